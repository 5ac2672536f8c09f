package util

import (
	"math/rand"
	"net/http"
	"time"
)

// The CDN fronting the trip data occasionally rejects obviously
// programmatic clients, so requests carry a rotating browser user agent.
var commonUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/115.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/113.0.0.0 Safari/537.36",
}

// RandomUserAgent returns one of the browser user agent strings.
func RandomUserAgent() string {
	return commonUserAgents[rand.Intn(len(commonUserAgents))]
}

// NewHTTPClient creates the http.Client used for downloads. Monthly trip
// files run into the hundreds of megabytes, so the timeout is generous; a
// request that exceeds it fails like any other fetch error.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: 120 * time.Second}
}
