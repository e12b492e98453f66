package utils

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// NewHTTPClient returns a client with a pooled transport. The timeout is an
// upper bound; callers narrow it per request with a context deadline.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// NewRESTClient wraps NewHTTPClient in a resty client bound to baseURL.
// Retries stay disabled: every failure is reported to the caller as-is.
func NewRESTClient(baseURL string, timeout time.Duration) *resty.Client {
	return resty.NewWithClient(NewHTTPClient(timeout)).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
}
