// SipSense daemon - webcam hydration tracking.
//
// Watches the webcam for drinking (mouth/vessel overlap), logs confirmed
// drinks, reminds when you are overdue, and serves a live dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sipsense/go-sipsense/internal/config"
	"github.com/sipsense/go-sipsense/internal/log"
	"github.com/sipsense/go-sipsense/pkg/camera"
	"github.com/sipsense/go-sipsense/pkg/debug"
	"github.com/sipsense/go-sipsense/pkg/detect"
	"github.com/sipsense/go-sipsense/pkg/drinking"
	"github.com/sipsense/go-sipsense/pkg/hydration"
	"github.com/sipsense/go-sipsense/pkg/notify"
	"github.com/sipsense/go-sipsense/pkg/web"
)

func main() {
	configPath := flag.String("config", "", "path to sipsense.toml")
	flag.BoolVar(&debug.Enabled, "debug", false, "enable debug logging")
	flag.BoolVar(&debug.Vision, "debug-vision", false, "enable per-frame vision logs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	fmt.Println("💧 SipSense - hydration tracker")
	fmt.Println("===============================")

	// Handle Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n👋 Shutting down")
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	now := time.Now()

	store := hydration.Open(hydration.NewJSONFile(cfg.StatePath), now)
	if cfg.Hydration.IntervalMinutes != hydration.DefaultIntervalMinutes && store.IntervalMinutes() == hydration.DefaultIntervalMinutes {
		// File config seeds the interval only when nothing was persisted
		if err := store.SetInterval(cfg.Hydration.IntervalMinutes); err != nil {
			return err
		}
	}

	// Camera
	cam, err := camera.Open(camera.Config{
		DeviceID: cfg.Camera.DeviceID,
		Width:    cfg.Camera.Width,
		Height:   cfg.Camera.Height,
		FPS:      cfg.Camera.FPS,
		Quality:  cfg.Camera.Quality,
	})
	if err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	defer cam.Close()
	store.SetCameraReady(true)
	fmt.Println("📷 Camera ready")

	// Face landmarks
	faceCfg := detect.DefaultFaceConfig()
	faceCfg.ModelPath = cfg.Detection.FaceModelPath
	faces, err := detect.NewYuNet(faceCfg)
	if err != nil {
		return fmt.Errorf("face model: %w", err)
	}
	defer faces.Close()
	store.SetFaceModelReady(true)
	fmt.Println("🙂 Face model ready")

	// Object detection: hosted API when a key is configured, local
	// ONNX otherwise
	var objects detect.ObjectDetector
	if cfg.Detection.APIKey != "" {
		objects, err = detect.NewRemote(detect.RemoteConfig{
			Endpoint: cfg.Detection.APIEndpoint,
			APIKey:   cfg.Detection.APIKey,
		})
	} else {
		yoloCfg := detect.DefaultYOLOConfig()
		yoloCfg.ModelPath = cfg.Detection.ObjectModelPath
		objects, err = detect.NewYOLO(yoloCfg)
	}
	if err != nil {
		return fmt.Errorf("object model: %w", err)
	}
	defer objects.Close()
	store.SetObjectModelReady(true)
	fmt.Println("🥤 Object model ready")

	// Desktop notifications are optional: track support so readiness
	// reporting stays honest on headless hosts
	var notifier hydration.Notifier
	if desktop, err := notify.New("SipSense"); err != nil {
		log.Warn("desktop notifications unavailable", "error", err)
		store.SetNotificationsSupported(false)
	} else {
		defer desktop.Close()
		notifier = desktop
		store.SetNotificationsSupported(true)
		store.SetNotificationsReady(true)
		fmt.Println("🔔 Notifications ready")
	}

	// Dashboard
	var server *web.Server
	if cfg.Web.Enabled {
		server = web.NewServer(cfg.Web.Port, store)
		server.StartAsync()
		defer server.Shutdown()
		fmt.Printf("🌐 Dashboard: http://localhost:%s\n", cfg.Web.Port)
	}

	store.OnEvent = func(ev hydration.Event) {
		fmt.Printf("💧 Drink logged: %s at %s (%d today)\n",
			ev.Class, ev.Timestamp.Format("15:04:05"), store.TodayCount(ev.Timestamp))
		if server != nil {
			server.BroadcastEvent(ev)
		}
	}

	// Fusion monitor
	monCfg := drinking.DefaultConfig()
	monCfg.FaceInterval = cfg.Drinking.FaceInterval()
	monCfg.ObjectInterval = cfg.Drinking.ObjectInterval()
	monCfg.EvalInterval = cfg.Drinking.EvalInterval()
	monCfg.Grace = cfg.Drinking.Grace()
	monCfg.IoUThreshold = cfg.Drinking.IoUThreshold
	monCfg.Session = drinking.SessionConfig{
		MinConfirmFrames: cfg.Drinking.MinConfirmFrames,
		StopDebounce:     cfg.Drinking.StopDebounce(),
		MinSipDuration:   cfg.Drinking.MinSipDuration(),
	}

	monitor := drinking.NewMonitor(monCfg, cam, faces, objects)
	monitor.OnEvent = func(ev drinking.Event) {
		store.AddEvent(ev.Class, ev.StoppedAt)
	}
	if server != nil {
		server.OnReset = monitor.Reset
		monitor.OnState = func(snap drinking.Snapshot) {
			server.UpdateState(func(st *web.Status) {
				st.FaceDetected = snap.FaceDetected
				st.ObjectDetected = snap.ObjectDetected
				st.CurrentClass = snap.CurrentClass
				st.Drinking = snap.Drinking
				st.SessionState = snap.State
			})
		}
		monitor.OnFrame = server.SendCameraFrame
	}

	// Reminders
	if notifier != nil && !cfg.Hydration.DisableReminders {
		remCfg := hydration.ReminderConfig{
			CheckInterval: time.Duration(cfg.Hydration.ReminderCheckSec) * time.Second,
			MinGap:        time.Duration(cfg.Hydration.ReminderMinGapSec) * time.Second,
		}
		reminder := hydration.NewReminder(remCfg, store, notifier)
		go reminder.Run(ctx)
	}

	fmt.Printf("🔄 Tracking started (interval %dm, Ctrl+C to stop)\n\n", store.IntervalMinutes())
	monitor.Run(ctx)
	return nil
}
