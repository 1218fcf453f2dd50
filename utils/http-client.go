package utils

import (
	"net/http"
	"time"
)

// NewHTTPClient returns the HTTP client used for calls to the other
// services, with a five second overall timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second,
	}
}
