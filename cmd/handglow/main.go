package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/ayusman/handglow/internal/app"
	"github.com/ayusman/handglow/internal/capture"
	"github.com/ayusman/handglow/internal/detector"
	"github.com/ayusman/handglow/internal/display"
	"github.com/ayusman/handglow/internal/export"
	"github.com/ayusman/handglow/internal/server"
	"github.com/ayusman/handglow/internal/source"
	"github.com/ayusman/handglow/internal/store"
	"github.com/ayusman/handglow/internal/tray"
)

type options struct {
	camera    int
	width     int
	height    int
	dataDir   string
	exportDir string
	addr      string
	tray      bool
	mdns      bool
	motion    float64
}

func parseFlags() options {
	defaults := app.DefaultConfig()

	var o options
	flag.IntVar(&o.camera, "camera", 0, "camera device id")
	flag.IntVar(&o.width, "width", defaults.Width, "canvas width")
	flag.IntVar(&o.height, "height", defaults.Height, "canvas height")
	flag.StringVar(&o.dataDir, "data", "", "data directory (default ~/.handglow)")
	flag.StringVar(&o.exportDir, "export-dir", "", "screenshot directory (default <data>/exports)")
	flag.StringVar(&o.addr, "addr", ":8420", "HTTP preview address, empty to disable")
	flag.BoolVar(&o.tray, "tray", false, "run headless with a tray menu instead of a window")
	flag.BoolVar(&o.mdns, "mdns", false, "advertise the preview server over mDNS")
	flag.Float64Var(&o.motion, "motion", source.DefaultConfig().MotionThreshold, "motion gate threshold in percent, 0 disables")
	flag.Parse()
	return o
}

func main() {
	fmt.Println("Handglow - Fingertip Light Painter")

	o := parseFlags()
	if o.width <= 0 || o.height <= 0 {
		log.Fatalf("Invalid canvas size %dx%d", o.width, o.height)
	}

	// Initialize the store
	dataDir := o.dataDir
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		dataDir = filepath.Join(homeDir, ".handglow")
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "handglow.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	palette, err := app.LoadPalette(st)
	if err != nil {
		log.Printf("Ignoring invalid palette settings: %v", err)
	}

	exportDir := o.exportDir
	if exportDir == "" {
		exportDir = filepath.Join(dataDir, "exports")
	}

	// Camera and hand model
	src := source.New(source.Config{
		Width:           o.width,
		Height:          o.height,
		MotionThreshold: o.motion,
	}, capture.NewCamera(o.camera, o.width, o.height), newDetector())
	defer src.Close() // closes the detector

	cfg := app.DefaultConfig()
	cfg.Width = o.width
	cfg.Height = o.height
	cfg.Palette = palette
	painter := app.New(cfg, src, export.New(exportDir, st))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := src.Run(ctx); err != nil {
			log.Printf("Landmark source failed: %v", err)
		}
	}()

	// Preview server
	var srv *server.Server
	if o.addr != "" {
		srv = server.New(server.Config{Store: st, Painter: painter})
		go func() {
			fmt.Printf("Starting server on %s\n", o.addr)
			if err := srv.ListenAndServe(o.addr); err != nil {
				log.Printf("Server failed: %v", err)
			}
		}()

		if o.mdns {
			adv, err := server.Advertise(o.addr)
			if err != nil {
				log.Printf("mDNS advertisement failed: %v", err)
			} else {
				defer adv.Shutdown()
			}
		}
	}

	if o.tray {
		runTray(ctx, stop, painter, previewURL(o.addr))
	} else {
		g := display.New(painter)
		g.QuitOn(ctx.Done())
		if err := display.Run(g, "Handglow"); err != nil {
			log.Printf("Window failed: %v", err)
		}
	}

	// Shutdown
	stop()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
		cancel()
	}
	wg.Wait()
}

// newDetector starts the MediaPipe detector, falling back to a detector
// that never sees a hand when the service is not installed.
func newDetector() detector.Detector {
	det, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		if errors.Is(err, detector.ErrServiceNotFound) {
			log.Printf("Hand service not found, running without hand tracking")
		} else {
			log.Printf("Failed to create detector: %v", err)
		}
		return detector.NewMockDetector()
	}
	return det
}

// runTray drives the frame loop from a ticker and blocks in the tray menu.
// Quitting from the menu cancels ctx through stop.
func runTray(ctx context.Context, stop context.CancelFunc, painter *app.App, preview string) {
	t := tray.New()

	painter.OnStatus(func(s app.Status) {
		msg := s.Message()
		if msg == "" {
			msg = "Tracking hand"
		}
		t.SetStatus(msg)
	})
	t.OnExport(func() {
		if _, err := painter.Export(); err != nil {
			log.Printf("Export failed: %v", err)
		}
	})
	t.OnPreview(func() {
		if preview == "" {
			log.Println("Preview server is disabled")
			return
		}
		if err := openBrowser(preview); err != nil {
			log.Printf("Failed to open preview: %v", err)
		}
	})

	t.OnQuit(func() {
		log.Println("Quit requested from tray")
		stop()
	})

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	painter.Start()
	defer painter.Stop()

	t.Run()
}

// previewURL returns the MJPEG stream URL for a listen address.
func previewURL(addr string) string {
	port, err := server.PortFromAddr(addr)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d/api/stream", port)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
