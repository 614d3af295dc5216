package executor

import (
	"net"
	"net/http"
	"time"
)

const (
	// HTTP client configuration timeouts
	TCPDialTimeout        = 5 * time.Second
	TCPKeepAliveInterval  = 30 * time.Second
	TLSHandshakeTimeout   = 5 * time.Second
	IdleConnTimeout       = 90 * time.Second
	ExpectContinueTimeout = 1 * time.Second
)

// HTTPDoer is the interface for executing HTTP requests
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// PoolSize returns the connection pool size for the given worker count
func PoolSize(workers int) int {
	size := workers + workers/2
	if size < 1 {
		size = 1
	}
	return size
}

// NewHTTPClient creates an HTTP client sized for workers concurrent callers.
// A zero timeout leaves attempts unbounded, as the default client does.
func NewHTTPClient(workers int, timeout time.Duration) *http.Client {
	size := PoolSize(workers)

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        size,
		MaxIdleConnsPerHost: size,
		MaxConnsPerHost:     size,
		IdleConnTimeout:     IdleConnTimeout,
		ForceAttemptHTTP2:   true,

		DialContext: (&net.Dialer{
			Timeout:   TCPDialTimeout,
			KeepAlive: TCPKeepAliveInterval,
		}).DialContext,

		TLSHandshakeTimeout:   TLSHandshakeTimeout,
		ExpectContinueTimeout: ExpectContinueTimeout,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
