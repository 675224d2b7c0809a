package http

import (
	"net/http"
	"time"

	"github.com/oshokin/audio-pipeline/internal/utils"
)

// NewClient builds an *http.Client with the User-Agent injector and the
// debug-level request/response logger wired as RoundTripper decorators, in
// inject-then-log-then-send order, so the logged request carries the
// User-Agent header. timeout <= 0 falls back to DefaultTimeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var transport http.RoundTripper = http.DefaultTransport

	transport = NewLogTransport(transport, 0)
	transport = NewUserAgentInjector(transport, utils.NewSimpleUserAgentProvider(DefaultUserAgent))

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
