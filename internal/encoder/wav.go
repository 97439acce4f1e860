package encoder

import (
	"fmt"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// encodeWAV serializes the accumulated per-channel samples into a 16-bit PCM
// WAV file. Zero accumulated samples produce a valid zero-duration file.
func encodeWAV(sampleRate float64, channels [][]float32) ([]byte, error) {
	rate := int(sampleRate)
	if rate <= 0 {
		rate = 44100
	}
	numChannels := len(channels)
	if numChannels == 0 {
		numChannels = 1
		channels = [][]float32{nil}
	}

	frames := len(channels[0])
	data := make([]int, 0, frames*numChannels)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChannels; ch++ {
			var s float32
			if i < len(channels[ch]) {
				s = channels[ch][i]
			}
			data = append(data, pcm16(s))
		}
	}

	ws := &memWriteSeeker{}
	enc := wav.NewEncoder(ws, rate, 16, numChannels, 1)
	if len(data) > 0 {
		buf := &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: numChannels, SampleRate: rate},
			Data:           data,
			SourceBitDepth: 16,
		}
		if err := enc.Write(buf); err != nil {
			return nil, fmt.Errorf("failed to write samples: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize wav: %w", err)
	}

	return ws.Bytes(), nil
}

// pcm16 converts a [-1, 1] float sample to signed 16-bit, clamping overshoot.
func pcm16(s float32) int {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	if s < 0 {
		return int(s * 0x8000)
	}
	return int(s * 0x7FFF)
}
