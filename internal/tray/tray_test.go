package tray

import "testing"

func TestTray_Callbacks(t *testing.T) {
	tr := New()

	var exported, previewed int
	tr.OnExport(func() { exported++ })
	tr.OnPreview(func() { previewed++ })

	tr.handle(func() func() { return tr.onExport })
	tr.handle(func() func() { return tr.onExport })
	tr.handle(func() func() { return tr.onPreview })

	if exported != 2 || previewed != 1 {
		t.Errorf("exported = %d, previewed = %d, want 2 and 1", exported, previewed)
	}

	// Unset callbacks are ignored.
	tr.handle(func() func() { return tr.onQuit })
}

func TestTray_OnQuit(t *testing.T) {
	tr := New()

	quit := make(chan struct{})
	tr.OnQuit(func() { close(quit) })
	tr.handle(func() func() { return tr.onQuit })

	select {
	case <-quit:
	default:
		t.Error("quit callback was not run")
	}
}

func TestTray_Status(t *testing.T) {
	tr := New()

	if got := tr.Status(); got != "Loading model..." {
		t.Errorf("initial Status() = %q", got)
	}

	// Before the menu exists only the stored text changes.
	tr.SetStatus("No hand detected")
	if got := tr.Status(); got != "No hand detected" {
		t.Errorf("Status() = %q", got)
	}
}
