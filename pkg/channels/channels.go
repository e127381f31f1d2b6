// Package channels holds small generic helpers for non-blocking channel use.
package channels

import (
	"errors"
)

var (
	ErrChannelClosed = errors.New("channel closed")
	ErrChannelFull   = errors.New("channel full")
)
