package ntp

import "errors"

// ErrIndexOutOfBounds signals that the queried host index exceeds the configured host list
var ErrIndexOutOfBounds = errors.New("index is out of bounds")
