package httpclient

import (
	"net/http"
	"time"
)

type HTTPClientInterface interface {
	Do(*http.Request) (*http.Response, error)
}

const (
	DefaultTimeout = 40 * time.Second
	// every provider call goes to the same host
	maxIdleConnsPerHost = 16
)

// DefaultClient returns an HTTP client with a timeout and its own connection pool.
func DefaultClient() HTTPClientInterface {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = maxIdleConnsPerHost

	return &http.Client{Timeout: DefaultTimeout, Transport: transport}
}

var _ HTTPClientInterface = DefaultClient()
