package ohlc

import "github.com/pkg/errors"

var (
	ErrInvalidBar   = errors.New("invalid bar")
	ErrInvalidRange = errors.New("invalid range")
)
