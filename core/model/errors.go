package model

import "errors"

// Error kinds shared by the station directory, the delivery lifecycle and
// the AR overlay. Callers match them with errors.Is.
var (
	ErrLocationUnavailable = errors.New("user location unavailable")
	ErrHeadingUnavailable  = errors.New("device heading unavailable")
	ErrCameraUnavailable   = errors.New("camera unavailable")
	ErrNoStationFound      = errors.New("no available station found")
	ErrInvalidRequest      = errors.New("invalid delivery request")
	ErrInvalidRating       = errors.New("invalid rating")
	ErrInvalidState        = errors.New("action not allowed in current state")
)
