package analytics

import "errors"

var (
	// ErrMissingProxyURL indicates ClientConfig.ProxyURL is empty.
	ErrMissingProxyURL = errors.New("analytics: proxy URL is required")

	// ErrMissingEventName indicates TrackEvent was given an empty event name.
	ErrMissingEventName = errors.New("analytics: event name is required")

	// ErrDisabled indicates telemetry is disabled and the event was not sent.
	ErrDisabled = errors.New("analytics: telemetry disabled")

	// ErrRejected indicates the proxy rejected the event with a client error;
	// such requests are never retried.
	ErrRejected = errors.New("analytics: event rejected by proxy")

	// ErrNilClient indicates UploaderConfig.Client is nil.
	ErrNilClient = errors.New("analytics: client is required")
)
