//go:build darwin

package capture

/*
#cgo LDFLAGS: -framework AVFoundation
#import <AVFoundation/AVFoundation.h>

int micAuthStatus() {
    AVAuthorizationStatus status = [AVCaptureDevice authorizationStatusForMediaType:AVMediaTypeAudio];
    return (int)status;
}

void requestMicAccess() {
    [AVCaptureDevice requestAccessForMediaType:AVMediaTypeAudio completionHandler:^(BOOL granted) {}];
}
*/
import "C"

import "errors"

const (
	micAuthNotDetermined = 0
	micAuthRestricted    = 1
	micAuthDenied        = 2
	micAuthAuthorized    = 3
)

// ensureMicAccess checks the microphone authorization status and triggers the
// system dialog when it has not been decided yet. Non-authorized states come
// back as named errors so the classifier can map them.
func ensureMicAccess() error {
	switch int(C.micAuthStatus()) {
	case micAuthAuthorized:
		return nil
	case micAuthNotDetermined:
		C.requestMicAccess()
		return &Error{Name: NameNotAllowed, Err: errors.New("microphone permission not yet granted")}
	default:
		return &Error{Name: NamePermissionDenied, Err: errors.New("microphone access denied")}
	}
}
