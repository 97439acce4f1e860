package capture

import "context"

// Source defines the interface for microphone input backends
type Source interface {
	// Supported reports whether the backend's platform primitives are
	// present. Pure probe, no side effects.
	Supported() bool
	// Open acquires the input device and starts delivering one buffer of
	// samples per callback to fn until ctx is cancelled. It returns the
	// negotiated format, which is fixed for the lifetime of the stream.
	Open(ctx context.Context, deviceID string, want Config, fn FrameFunc) (Config, error)
	ListDevices() ([]Device, error)
	Close() error
}

// Config describes a capture format. The values returned by Open are the
// negotiated ones and may differ from the requested ones.
type Config struct {
	SampleRate   float64
	NumChannels  int
	BufferLength int // sample frames per callback
}

// FrameFunc receives one buffer-length batch of channel-0 samples. The slice
// is owned by the callee; the backend does not reuse it.
type FrameFunc func(samples []float32)

// Device represents an audio input device
type Device struct {
	ID      string
	Name    string
	Default bool
}
