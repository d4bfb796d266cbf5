package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/docqa/internal/config"
)

// one transport for every outbound model call so connections are reused
var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// New returns a client on the shared transport. A zero timeout means the
// caller's context is the only deadline, which streaming calls need.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   timeout,
	}
}
