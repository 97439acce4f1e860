package recorder

import (
	"github.com/petems/wavrec/internal/blob"
	"github.com/petems/wavrec/internal/capture"
	"github.com/petems/wavrec/internal/encoder"
)

// Signal identifies a state transition or a worker-originated notification.
// Worker reply command names are forwarded verbatim, so new worker signals
// need no recorder changes.
type Signal string

const (
	// SignalRecording fires when a start attempt succeeds.
	SignalRecording Signal = "recording"
	// SignalInactive fires on every stop, including idempotent repeats.
	SignalInactive Signal = "inactive"
	// SignalBlocked fires when microphone acquisition fails.
	SignalBlocked Signal = "blocked"
	// SignalWAVDelivered fires when an export reply arrives.
	SignalWAVDelivered = Signal(encoder.ReplyWAVDelivered)
)

// Event is delivered to observers registered with Notify.
type Event struct {
	Signal Signal

	// Code and Err describe the acquisition failure on blocked events.
	Code capture.Code
	Err  error

	// Ref points at the exported artifact on wav-delivered events.
	Ref blob.Ref
}
