package encoder

import (
	"sync"

	"github.com/rs/zerolog"
)

// DefaultMaxSamples bounds accumulation per channel when the config leaves
// it unset: ten minutes at 48 kHz.
const DefaultMaxSamples = 10 * 60 * 48000

// Config configures a Worker.
type Config struct {
	// MaxSamples caps accumulation per channel; frames past the cap are
	// dropped with a one-time warning. Zero means DefaultMaxSamples,
	// negative means unbounded.
	MaxSamples int
	Logger     zerolog.Logger
}

// Worker accumulates PCM frames and serializes them to WAV on request. All
// state lives on the run goroutine; Send and Replies are the only way in
// and out.
type Worker struct {
	in  chan Message
	out chan Reply
	log zerolog.Logger
	max int

	closeOnce sync.Once
}

// NewWorker starts the worker goroutine.
func NewWorker(cfg Config) *Worker {
	max := cfg.MaxSamples
	if max == 0 {
		max = DefaultMaxSamples
	}
	w := &Worker{
		in:  make(chan Message, 64),
		out: make(chan Reply, 16),
		log: cfg.Logger,
		max: max,
	}
	go w.run()
	return w
}

// Send delivers a message to the worker in FIFO order. It must not be called
// after Close.
func (w *Worker) Send(m Message) {
	w.in <- m
}

// Replies returns the ordered reply channel. It is closed when the worker
// shuts down.
func (w *Worker) Replies() <-chan Reply {
	return w.out
}

// Close stops the worker after it drains pending messages.
func (w *Worker) Close() {
	w.closeOnce.Do(func() {
		close(w.in)
	})
}

func (w *Worker) run() {
	defer close(w.out)

	var (
		sampleRate float64
		samples    [][]float32
		inited     bool
		capWarned  bool
	)

	for msg := range w.in {
		switch msg.Cmd {
		case CmdInit:
			sampleRate = msg.SampleRate
			numChannels := msg.NumChannels
			if numChannels < 1 {
				numChannels = 1
			}
			samples = make([][]float32, numChannels)
			inited = true
			capWarned = false
			w.log.Debug().
				Float64("sample_rate", sampleRate).
				Int("num_channels", numChannels).
				Msg("Encoder initialized")

		case CmdRecord:
			if !inited {
				w.log.Warn().Msg("Dropping record message before init")
				continue
			}
			for ch := range samples {
				if ch >= len(msg.Buffer) {
					break
				}
				frame := msg.Buffer[ch]
				if w.max > 0 {
					room := w.max - len(samples[ch])
					if room <= 0 {
						if !capWarned {
							w.log.Warn().Int("max_samples", w.max).Msg("Accumulation cap reached, dropping frames")
							capWarned = true
						}
						continue
					}
					if len(frame) > room {
						frame = frame[:room]
					}
				}
				samples[ch] = append(samples[ch], frame...)
			}

		case CmdClear:
			for ch := range samples {
				samples[ch] = samples[ch][:0]
			}
			capWarned = false

		case CmdExportWAV:
			data, err := encodeWAV(sampleRate, samples)
			if err != nil {
				// No failure reply exists in the protocol; the export
				// stays pending on the controller side.
				w.log.Error().Err(err).Msg("WAV serialization failed")
				continue
			}
			w.out <- Reply{Cmd: ReplyWAVDelivered, WAV: data}

		default:
			w.log.Warn().Str("command", string(msg.Cmd)).Msg("Unknown encoder command")
		}
	}
}
