package export

import "errors"

var (
	// ErrNilMeter indicates NewBridge was given a nil meter.
	ErrNilMeter = errors.New("export: meter is required")

	// ErrNilRegistry indicates a nil wrapper registry was provided.
	ErrNilRegistry = errors.New("export: registry is required")

	// ErrMissingURL indicates RemoteWriteConfig.URL is empty.
	ErrMissingURL = errors.New("export: remote write URL is required")

	// ErrAlreadyStarted indicates Start was called on a running writer.
	ErrAlreadyStarted = errors.New("export: remote writer already started")
)
