package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/atotto/clipboard"

	"github.com/petems/wavrec/internal/capture"
	"github.com/petems/wavrec/internal/config"
	"github.com/petems/wavrec/internal/logging"
	"github.com/petems/wavrec/internal/recorder"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
)

func main() {
	listDevices := flag.Bool("list-devices", false, "list audio input devices and exit")
	duration := flag.Duration("duration", 5*time.Second, "how long to record")
	output := flag.String("o", "recording.wav", "output WAV file path")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("wavrec", Version)
		return
	}

	// Load config from XDG/Library/AppData
	cfg, err := config.Load()
	if err != nil {
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logging.NewWithLevel(cfg.LogLevel)

	src, err := capture.NewPortAudio(log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize audio")
	}

	if *listDevices {
		devices, err := src.ListDevices()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list devices")
		}
		for _, d := range devices {
			marker := " "
			if d.Default {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, d.Name)
		}
		src.Close()
		return
	}

	if !src.Supported() {
		log.Fatal().Msg("No usable audio input on this system")
	}

	rec := recorder.New(recorder.Config{
		Source:   src,
		DeviceID: cfg.Audio.DeviceID,
		Audio: capture.Config{
			SampleRate:   cfg.Audio.SampleRate,
			NumChannels:  cfg.Audio.NumChannels,
			BufferLength: cfg.Audio.BufferLength,
		},
		MaxSamples: cfg.MaxSamples(),
		Logger:     log,
	})
	defer rec.Close()

	// Recorder outcomes arrive as signals, never as errors from Start
	started := make(chan recorder.Event, 1)
	rec.Notify(func(ev recorder.Event) {
		switch ev.Signal {
		case recorder.SignalRecording, recorder.SignalBlocked:
			select {
			case started <- ev:
			default:
			}
		}
	})

	rec.Start()

	select {
	case ev := <-started:
		if ev.Signal == recorder.SignalBlocked {
			log.Fatal().Err(ev.Err).Str("code", string(ev.Code)).Msg("Microphone unavailable")
		}
	case <-time.After(10 * time.Second):
		log.Fatal().Msg("Timed out waiting for microphone")
	}

	// Record until the duration elapses or the user interrupts
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-time.After(*duration):
	case <-sigChan:
		log.Info().Msg("Interrupted, exporting what we have")
	}

	ref := <-rec.ExportWAV()
	data, ok := rec.Blob(ref)
	if !ok {
		log.Fatal().Msg("Exported artifact missing")
	}

	if err := os.WriteFile(*output, data, 0644); err != nil {
		log.Fatal().Err(err).Str("path", *output).Msg("Failed to write output")
	}

	path := *output
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if err := clipboard.WriteAll(path); err != nil {
		log.Debug().Err(err).Msg("Clipboard unavailable")
	}

	log.Info().Str("path", path).Int("bytes", len(data)).Msg("Recording saved")
}
