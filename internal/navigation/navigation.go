// Package navigation carries route changes requested by the storefront
// flows back to the client.
package navigation

import (
	"net/url"
	"sync"
)

const (
	PathHome              = "/"
	PathCart              = "/cart"
	PathCheckout          = "/checkout"
	PathNotFound          = "/404"
	PathOrderConfirmation = "/order-confirmation"
)

type Navigator interface {
	Push(path string, query url.Values)
}

// Recorder remembers the last requested route.
type Recorder struct {
	mu     sync.Mutex
	target string
	pushed bool
}

func (r *Recorder) Push(path string, query url.Values) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.target = Target(path, query)
	r.pushed = true
}

// Redirect returns the last pushed target and whether one was pushed.
func (r *Recorder) Redirect() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target, r.pushed
}

// Target joins path and an encoded query string.
func Target(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
