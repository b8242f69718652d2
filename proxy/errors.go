package proxy

import "fmt"

// upstreamError reports a non-204 acknowledgement from the collection
// endpoint.
type upstreamError struct {
	status int
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("proxy: upstream returned status %d", e.status)
}
