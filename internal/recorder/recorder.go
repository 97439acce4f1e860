// Package recorder coordinates microphone capture and WAV export: a two-state
// recording machine, a memoized one-shot microphone grant, a gate that
// forwards frames to the encoder worker only while recording, and one-shot
// export orchestration.
package recorder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/petems/wavrec/internal/blob"
	"github.com/petems/wavrec/internal/capture"
	"github.com/petems/wavrec/internal/encoder"
)

// ErrClosed reports an acquisition that resolved after the recorder was
// torn down.
var ErrClosed = errors.New("recorder closed")

// State is the recording state. It is the single source of truth for whether
// frames reach the encoder.
type State int32

const (
	StateInactive State = iota
	StateRecording
)

func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	default:
		return "inactive"
	}
}

// Config configures a Recorder.
type Config struct {
	Source   capture.Source
	DeviceID string
	// Audio is the requested capture format; the negotiated one may differ
	// and is fixed once the grant succeeds.
	Audio capture.Config
	// MaxSamples is passed through to the encoder worker.
	MaxSamples int
	Logger     zerolog.Logger
}

// grant is the memoized outcome of the single microphone acquisition.
type grant struct {
	done chan struct{}
	cfg  capture.Config
	err  error
}

// Recorder is the capture controller. All operations are non-blocking; start
// and export outcomes are observed through signals and the export channel.
type Recorder struct {
	src      capture.Source
	deviceID string
	want     capture.Config
	log      zerolog.Logger

	enc   *encoder.Worker
	blobs *blob.Registry

	// state is atomic so the frame gate stays lock-free on the drop path.
	state atomic.Int32

	mu            sync.Mutex
	observers     []func(Event)
	exports       []chan blob.Ref
	captureCancel context.CancelFunc
	closed        bool

	grantOnce sync.Once
	grant     *grant

	pumpDone chan struct{}
}

// New creates a Recorder and starts its encoder worker.
func New(cfg Config) *Recorder {
	r := &Recorder{
		src:      cfg.Source,
		deviceID: cfg.DeviceID,
		want:     cfg.Audio,
		log:      cfg.Logger,
		enc:      encoder.NewWorker(encoder.Config{MaxSamples: cfg.MaxSamples, Logger: cfg.Logger}),
		blobs:    blob.NewRegistry(),
		pumpDone: make(chan struct{}),
	}
	go r.pumpReplies()
	return r
}

// Supported reports whether the platform primitives needed for capture are
// present. Pure probe, callable at any time.
func (r *Recorder) Supported() bool {
	return r.src != nil && r.src.Supported()
}

// State returns the current recording state.
func (r *Recorder) State() State {
	return State(r.state.Load())
}

// Notify registers an observer for recorder events. Observers are invoked
// from recorder goroutines and must not block.
func (r *Recorder) Notify(fn func(Event)) {
	r.mu.Lock()
	r.observers = append(r.observers, fn)
	r.mu.Unlock()
}

// Start requests the microphone grant and, once it resolves successfully,
// transitions to recording. Failure never surfaces as an error; it becomes a
// blocked signal carrying the classified code.
func (r *Recorder) Start() {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return
	}

	go func() {
		g := r.acquire()
		<-g.done
		if g.err != nil {
			code := capture.ClassifyError(g.err)
			r.log.Warn().Err(g.err).Str("code", string(code)).Msg("Recording blocked")
			r.emit(Event{Signal: SignalBlocked, Code: code, Err: g.err})
			return
		}
		r.state.Store(int32(StateRecording))
		r.log.Info().Msg("Recording")
		r.emit(Event{Signal: SignalRecording})
	}()
}

// Stop transitions to inactive. Safe from any state; repeated stops re-emit
// the inactive signal. Accumulated samples are preserved.
func (r *Recorder) Stop() {
	r.state.Store(int32(StateInactive))
	r.emit(Event{Signal: SignalInactive})
}

// Reset forces inactive and discards the encoder's accumulated samples.
func (r *Recorder) Reset() {
	r.Stop()
	r.send(encoder.Message{Cmd: encoder.CmdClear})
}

// ExportWAV stops recording, requests serialization and returns a one-shot
// channel that resolves with a reference to the artifact. The channel never
// reports failure; if the worker never replies it stays pending.
func (r *Recorder) ExportWAV() <-chan blob.Ref {
	ch := make(chan blob.Ref, 1)

	// Stop first so no further frames are appended during the export.
	r.Stop()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ch
	}
	// The waiter must be registered before the request goes out, or a fast
	// reply could slip past it.
	r.exports = append(r.exports, ch)
	r.enc.Send(encoder.Message{Cmd: encoder.CmdExportWAV})
	r.mu.Unlock()

	return ch
}

// Blob returns the artifact behind a reference produced by ExportWAV.
func (r *Recorder) Blob(ref blob.Ref) ([]byte, bool) {
	return r.blobs.Get(ref)
}

// ReleaseBlob drops a single exported artifact.
func (r *Recorder) ReleaseBlob(ref blob.Ref) {
	r.blobs.Release(ref)
}

// AudioConfig returns the negotiated capture format once the grant has
// succeeded.
func (r *Recorder) AudioConfig() (capture.Config, bool) {
	r.mu.Lock()
	g := r.grant
	r.mu.Unlock()
	if g == nil {
		return capture.Config{}, false
	}
	select {
	case <-g.done:
	default:
		return capture.Config{}, false
	}
	if g.err != nil {
		return capture.Config{}, false
	}
	return g.cfg, true
}

// Close tears everything down: capture stream, encoder worker and held
// blobs. Pending exports stay pending.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	cancel := r.captureCancel
	r.mu.Unlock()

	r.state.Store(int32(StateInactive))
	if cancel != nil {
		cancel()
	}

	var err error
	if r.src != nil {
		err = r.src.Close()
	}
	r.enc.Close()
	<-r.pumpDone
	r.blobs.Close()
	return err
}

// acquire memoizes the single microphone acquisition. Every caller,
// including concurrent first-callers, shares the same pending outcome; no
// second permission request is ever issued.
func (r *Recorder) acquire() *grant {
	r.grantOnce.Do(func() {
		g := &grant{done: make(chan struct{})}
		r.mu.Lock()
		r.grant = g
		r.mu.Unlock()

		go func() {
			defer close(g.done)

			ctx, cancel := context.WithCancel(context.Background())
			cfg, err := r.src.Open(ctx, r.deviceID, r.want, r.forward)
			if err != nil {
				cancel()
				g.err = err
				return
			}

			r.mu.Lock()
			if r.closed {
				r.mu.Unlock()
				cancel()
				g.err = ErrClosed
				return
			}
			r.captureCancel = cancel
			r.mu.Unlock()

			g.cfg = cfg
			r.log.Info().
				Float64("sample_rate", cfg.SampleRate).
				Int("num_channels", cfg.NumChannels).
				Int("buffer_length", cfg.BufferLength).
				Msg("Microphone granted")

			// init must reach the worker before the first record message;
			// frames cannot be forwarded until g.done closes and the state
			// flips to recording, which happens after this send.
			r.send(encoder.Message{
				Cmd:         encoder.CmdInit,
				SampleRate:  cfg.SampleRate,
				NumChannels: cfg.NumChannels,
			})
		}()
	})
	return r.grant
}

// forward is the frame gate. It runs on the capture goroutine at a fixed
// cadence for the lifetime of the stream; dropping while inactive takes no
// lock and queues nothing.
func (r *Recorder) forward(samples []float32) {
	if State(r.state.Load()) != StateRecording {
		return
	}
	r.mu.Lock()
	// Re-check under the lock so no record message can trail a stop-then-
	// export sequence on the ordered channel.
	if State(r.state.Load()) == StateRecording && !r.closed {
		r.enc.Send(encoder.Message{Cmd: encoder.CmdRecord, Buffer: [][]float32{samples}})
	}
	r.mu.Unlock()
}

// send delivers a message to the worker unless the recorder is closed.
func (r *Recorder) send(m encoder.Message) {
	r.mu.Lock()
	if !r.closed {
		r.enc.Send(m)
	}
	r.mu.Unlock()
}

// pumpReplies resolves export waiters in FIFO order and forwards every
// worker reply verbatim as a signal.
func (r *Recorder) pumpReplies() {
	defer close(r.pumpDone)

	for reply := range r.enc.Replies() {
		switch reply.Cmd {
		case encoder.ReplyWAVDelivered:
			ref := r.blobs.Put(reply.WAV)

			r.mu.Lock()
			var waiter chan blob.Ref
			if len(r.exports) > 0 {
				waiter = r.exports[0]
				r.exports = r.exports[1:]
			}
			r.mu.Unlock()

			if waiter != nil {
				waiter <- ref
				close(waiter)
			}
			r.emit(Event{Signal: SignalWAVDelivered, Ref: ref})

		default:
			r.emit(Event{Signal: Signal(reply.Cmd)})
		}
	}
}

func (r *Recorder) emit(ev Event) {
	r.mu.Lock()
	observers := make([]func(Event), len(r.observers))
	copy(observers, r.observers)
	r.mu.Unlock()

	for _, fn := range observers {
		fn(ev)
	}
}
