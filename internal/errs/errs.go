package errs

import (
	"errors"
)

var (
	ErrConnection = errors.New("device connection error")
	ErrLogin      = errors.New("login rejected")
	ErrProtocol   = errors.New("device protocol error")
	ErrNoData     = errors.New("no data available")
)

var (
	ErrFilterNotFound = errors.New("filter not found")
)
