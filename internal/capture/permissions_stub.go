//go:build !darwin

package capture

// ensureMicAccess is a no-op on platforms without a microphone permission
// model; denial shows up as a stream open failure instead.
func ensureMicAccess() error {
	return nil
}
