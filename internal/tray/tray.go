// Package tray provides the system tray menu used in headless mode.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onExport  func()
	onPreview func()
	onQuit    func()
	status    string
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{
		status: "Loading model...",
	}
}

// OnExport sets the callback function to be called when "Export snapshot" is clicked.
func (t *Tray) OnExport(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExport = fn
}

// OnPreview sets the callback function to be called when "Open preview" is clicked.
func (t *Tray) OnPreview(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPreview = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Handglow")
	systray.SetTooltip("Handglow light painter")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(t.status, "Hand tracking status")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuExport := systray.AddMenuItem("Export snapshot", "Save the trail as a PNG")
	menuPreview := systray.AddMenuItem("Open preview", "Open the live preview in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Handglow")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuExport.ClickedCh:
				t.handle(func() func() { return t.onExport })
			case <-menuPreview.ClickedCh:
				t.handle(func() func() { return t.onPreview })
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handle runs the callback picked under the read lock, outside of it.
func (t *Tray) handle(pick func() func()) {
	t.mu.RLock()
	callback := pick()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.handle(func() func() { return t.onQuit })
	systray.Quit()
}

// SetStatus updates the status line of the menu.
func (t *Tray) SetStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = status
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(status)
	}
}

// Status returns the current status line.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}
