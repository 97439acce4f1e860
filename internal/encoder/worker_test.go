package encoder

import (
	"bytes"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/rs/zerolog"
)

func newTestWorker(t *testing.T, maxSamples int) *Worker {
	t.Helper()
	w := NewWorker(Config{MaxSamples: maxSamples, Logger: zerolog.Nop()})
	t.Cleanup(w.Close)
	return w
}

func exportFrames(t *testing.T, w *Worker) int {
	t.Helper()
	return len(decodeWAV(t, exportBytes(t, w)))
}

func exportBytes(t *testing.T, w *Worker) []byte {
	t.Helper()
	w.Send(Message{Cmd: CmdExportWAV})
	select {
	case reply := <-w.Replies():
		if reply.Cmd != ReplyWAVDelivered {
			t.Fatalf("expected wav-delivered reply, got %q", reply.Cmd)
		}
		return reply.WAV
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for wav-delivered reply")
		return nil
	}
}

func decodeWAV(t *testing.T, data []byte) []int {
	t.Helper()
	dec := wav.NewDecoder(bytes.NewReader(data))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("failed to decode wav: %v", err)
	}
	return buf.Data
}

func frame(n int, v float32) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestExportRoundTrip(t *testing.T) {
	w := newTestWorker(t, -1)

	w.Send(Message{Cmd: CmdInit, SampleRate: 8000, NumChannels: 1})
	for i := 0; i < 4; i++ {
		w.Send(Message{Cmd: CmdRecord, Buffer: [][]float32{frame(256, 0.5)}})
	}

	data := exportBytes(t, w)

	dec := wav.NewDecoder(bytes.NewReader(data))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("failed to decode wav: %v", err)
	}
	if got := len(buf.Data); got != 4*256 {
		t.Errorf("expected %d samples, got %d", 4*256, got)
	}
	if dec.SampleRate != 8000 {
		t.Errorf("expected sample rate 8000, got %d", dec.SampleRate)
	}
	if dec.NumChans != 1 {
		t.Errorf("expected 1 channel, got %d", dec.NumChans)
	}
	// 0.5 encodes to 0.5 * 0x7FFF = 16383
	if buf.Data[0] != 16383 {
		t.Errorf("expected first sample 16383, got %d", buf.Data[0])
	}
}

func TestClearDiscardsAccumulation(t *testing.T) {
	w := newTestWorker(t, -1)

	w.Send(Message{Cmd: CmdInit, SampleRate: 8000, NumChannels: 1})
	w.Send(Message{Cmd: CmdRecord, Buffer: [][]float32{frame(128, 0.1)}})
	w.Send(Message{Cmd: CmdClear})

	if got := exportFrames(t, w); got != 0 {
		t.Errorf("expected zero-duration wav after clear, got %d samples", got)
	}
}

func TestExportDoesNotClear(t *testing.T) {
	w := newTestWorker(t, -1)

	w.Send(Message{Cmd: CmdInit, SampleRate: 8000, NumChannels: 1})
	w.Send(Message{Cmd: CmdRecord, Buffer: [][]float32{frame(128, 0.1)}})

	first := exportBytes(t, w)
	second := exportBytes(t, w)
	if !bytes.Equal(first, second) {
		t.Error("back-to-back exports should reflect the same accumulation")
	}
}

func TestRecordBeforeInitIsDropped(t *testing.T) {
	w := newTestWorker(t, -1)

	w.Send(Message{Cmd: CmdRecord, Buffer: [][]float32{frame(128, 0.1)}})
	w.Send(Message{Cmd: CmdInit, SampleRate: 8000, NumChannels: 1})

	if got := exportFrames(t, w); got != 0 {
		t.Errorf("expected pre-init frames to be dropped, got %d samples", got)
	}
}

func TestAccumulationCap(t *testing.T) {
	w := newTestWorker(t, 300)

	w.Send(Message{Cmd: CmdInit, SampleRate: 8000, NumChannels: 1})
	for i := 0; i < 4; i++ {
		w.Send(Message{Cmd: CmdRecord, Buffer: [][]float32{frame(128, 0.1)}})
	}

	if got := exportFrames(t, w); got != 300 {
		t.Errorf("expected accumulation capped at 300 samples, got %d", got)
	}
}

func TestAccumulationSurvivesAcrossExports(t *testing.T) {
	w := newTestWorker(t, -1)

	w.Send(Message{Cmd: CmdInit, SampleRate: 8000, NumChannels: 1})
	w.Send(Message{Cmd: CmdRecord, Buffer: [][]float32{frame(64, 0.2)}})

	if got := exportFrames(t, w); got != 64 {
		t.Fatalf("expected 64 samples, got %d", got)
	}

	// More frames after an export keep appending to the same accumulation.
	w.Send(Message{Cmd: CmdRecord, Buffer: [][]float32{frame(64, 0.2)}})
	if got := exportFrames(t, w); got != 128 {
		t.Errorf("expected 128 samples, got %d", got)
	}
}

func TestEmptyExportIsValidWAV(t *testing.T) {
	w := newTestWorker(t, -1)

	w.Send(Message{Cmd: CmdInit, SampleRate: 44100, NumChannels: 1})
	data := exportBytes(t, w)

	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		t.Fatal("expected a valid zero-duration wav file")
	}
}
