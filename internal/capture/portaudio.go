package capture

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"
)

type portAudioSource struct {
	stream *portaudio.Stream
	log    zerolog.Logger
}

// NewPortAudio creates a new PortAudio-based microphone source
func NewPortAudio(log zerolog.Logger) (Source, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &portAudioSource{log: log}, nil
}

func (p *portAudioSource) Supported() bool {
	_, err := portaudio.DefaultInputDevice()
	return err == nil
}

func (p *portAudioSource) Open(ctx context.Context, deviceID string, want Config, fn FrameFunc) (Config, error) {
	// The OS permission check happens before any device is touched so a
	// denial surfaces with its platform name instead of a stream error.
	if err := ensureMicAccess(); err != nil {
		return Config{}, err
	}

	// Find device
	var device *portaudio.DeviceInfo
	if deviceID == "" {
		var err error
		device, err = portaudio.DefaultInputDevice()
		if err != nil {
			return Config{}, &Error{Name: NameNotReadable, Err: fmt.Errorf("failed to get default input device: %w", err)}
		}
	} else {
		devices, err := portaudio.Devices()
		if err != nil {
			return Config{}, fmt.Errorf("failed to enumerate devices: %w", err)
		}
		for _, d := range devices {
			if d.Name == deviceID {
				device = d
				break
			}
		}
	}

	if device == nil {
		return Config{}, fmt.Errorf("device not found: %s", deviceID)
	}

	sampleRate := want.SampleRate
	if sampleRate == 0 {
		sampleRate = device.DefaultSampleRate
	}
	bufferLength := want.BufferLength
	if bufferLength == 0 {
		bufferLength = 4096
	}

	// Open stream: mono, float32
	buffer := make([]float32, bufferLength)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: bufferLength,
	}, buffer)

	if err != nil {
		return Config{}, &Error{Name: NameNotReadable, Err: fmt.Errorf("failed to open audio stream: %w", err)}
	}

	p.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		return Config{}, &Error{Name: NameNotReadable, Err: fmt.Errorf("failed to start audio stream: %w", err)}
	}

	// Read loop: one fn invocation per buffer-length of samples
	go func() {
		defer stream.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if err := stream.Read(); err != nil {
					p.log.Error().Err(err).Msg("Audio stream read failed")
					return
				}
				samples := make([]float32, len(buffer))
				copy(samples, buffer)
				fn(samples)
			}
		}
	}()

	return Config{
		SampleRate:   sampleRate,
		NumChannels:  1,
		BufferLength: bufferLength,
	}, nil
}

func (p *portAudioSource) ListDevices() ([]Device, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	result := make([]Device, 0, len(devices))
	defaultDevice, _ := portaudio.DefaultInputDevice()

	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			result = append(result, Device{
				ID:      d.Name,
				Name:    d.Name,
				Default: d == defaultDevice,
			})
		}
	}

	return result, nil
}

func (p *portAudioSource) Close() error {
	if p.stream != nil {
		p.stream.Close()
	}
	portaudio.Terminate()
	return nil
}
