// Package encoder runs WAV accumulation and serialization on an isolated
// goroutine. The controller and the worker share no memory; everything goes
// over two ordered channels of command-tagged envelopes.
package encoder

// Command tags a message or reply envelope.
type Command string

const (
	// CmdInit establishes buffer parameters. Must precede any CmdRecord.
	CmdInit Command = "init"
	// CmdRecord appends one frame of samples to the accumulation.
	CmdRecord Command = "record"
	// CmdClear discards all accumulated samples.
	CmdClear Command = "clear"
	// CmdExportWAV serializes the accumulation and replies with the artifact.
	CmdExportWAV Command = "export-wav"

	// ReplyWAVDelivered is the reply to CmdExportWAV. Reply command names
	// double as the signal names the controller re-emits to its observers.
	ReplyWAVDelivered Command = "wav-delivered"
)

// Message is a controller-to-worker envelope. Only the fields relevant to
// Cmd are populated.
type Message struct {
	Cmd Command

	// Init parameters.
	SampleRate  float64
	NumChannels int

	// Record payload: one sample slice per channel. Only channel 0 is
	// forwarded today, but the shape leaves room for more without a
	// protocol change.
	Buffer [][]float32
}

// Reply is a worker-to-controller envelope.
type Reply struct {
	Cmd Command
	WAV []byte
}
