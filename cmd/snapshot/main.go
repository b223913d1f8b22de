// Snapshot - one-shot detection check for sipsense.
//
// Captures a single frame, runs both detectors, and prints what was
// found: face landmarks, candidate vessels, and the mouth/vessel IoU.
// Useful for camera placement and model troubleshooting.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/sipsense/go-sipsense/internal/config"
	"github.com/sipsense/go-sipsense/internal/log"
	"github.com/sipsense/go-sipsense/pkg/camera"
	"github.com/sipsense/go-sipsense/pkg/detect"
	"github.com/sipsense/go-sipsense/pkg/geometry"
)

func main() {
	configPath := flag.String("config", "", "path to sipsense.toml")
	outPath := flag.String("o", "", "write the captured frame to this file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	if err := run(cfg, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, outPath string) error {
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

	fmt.Print("📷 Capturing... ")
	frame, err := cam.CaptureJPEG()
	if err != nil {
		return err
	}
	fmt.Printf("✅ (%d KB)\n", len(frame)/1024)

	if outPath != "" {
		if err := os.WriteFile(outPath, frame, 0644); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		fmt.Printf("💾 Frame saved to %s\n", outPath)
	}

	faceCfg := detect.DefaultFaceConfig()
	faceCfg.ModelPath = cfg.Detection.FaceModelPath
	faceDet, err := detect.NewYuNet(faceCfg)
	if err != nil {
		return fmt.Errorf("face model: %w", err)
	}
	defer faceDet.Close()

	yoloCfg := detect.DefaultYOLOConfig()
	yoloCfg.ModelPath = cfg.Detection.ObjectModelPath
	objDet, err := detect.NewYOLO(yoloCfg)
	if err != nil {
		return fmt.Errorf("object model: %w", err)
	}
	defer objDet.Close()

	faces, err := faceDet.DetectFaces(frame)
	if err != nil {
		return fmt.Errorf("face detection: %w", err)
	}
	objects, err := objDet.DetectObjects(frame)
	if err != nil {
		return fmt.Errorf("object detection: %w", err)
	}

	fmt.Printf("\n🙂 Faces: %d\n", len(faces))
	var mouth geometry.Box
	var haveMouth bool
	if face, ok := detect.BestFace(faces); ok {
		fmt.Printf("   best: conf=%.2f box=%.0fx%.0f\n", face.Confidence, face.Box.W, face.Box.H)
		if mouth, haveMouth = geometry.MouthRegion(face.Keypoints); haveMouth {
			fmt.Printf("   mouth: center=(%.0f, %.0f) size=%.0fx%.0f\n",
				mouth.X, mouth.Y, mouth.W, mouth.H)
		} else {
			fmt.Println("   mouth: no lip landmarks")
		}
	}

	whitelist := detect.NewWhitelist(detect.DefaultClasses)
	vessels := whitelist.Filter(objects)
	sort.Slice(vessels, func(i, j int) bool { return vessels[i].Confidence > vessels[j].Confidence })
	fmt.Printf("\n🥤 Objects: %d total, %d drinkware\n", len(objects), len(vessels))
	for _, obj := range vessels {
		line := fmt.Sprintf("   %s: conf=%.2f center=(%.0f, %.0f)", obj.ClassName, obj.Confidence, obj.Box.X, obj.Box.Y)
		if haveMouth {
			line += fmt.Sprintf(" iou=%.3f", geometry.IoU(mouth, obj.Box))
		}
		fmt.Println(line)
	}

	if haveMouth && len(vessels) > 0 {
		best := vessels[0]
		if iou := geometry.IoU(mouth, best.Box); iou >= cfg.Drinking.IoUThreshold {
			fmt.Printf("\n💧 Drinking posture detected (%s, iou=%.3f)\n", best.ClassName, iou)
		} else {
			fmt.Printf("\n➖ No overlap above threshold (%.2f)\n", cfg.Drinking.IoUThreshold)
		}
	}

	return nil
}
