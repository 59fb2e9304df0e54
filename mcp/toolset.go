package mcp

import (
	"errors"
	"sync"

	"github.com/fwojciec/recall"
)

// Toolset owns the provider sessions opened by Connect and the tools they
// expose. Closing it releases every session in reverse acquisition order.
type Toolset struct {
	mu        sync.Mutex
	providers []Provider
	releases  []*release
	closed    bool
}

// Provider is one connected tool provider and the tools it exposes.
type Provider struct {
	Name  string
	Tools []recall.Tool

	release func() error
}

type release struct {
	once sync.Once
	fn   func() error
	err  error
}

func (r *release) run() error {
	r.once.Do(func() { r.err = r.fn() })
	return r.err
}

// push registers fn on the release stack and returns a function that runs it
// early. fn runs at most once.
func (t *Toolset) push(fn func() error) func() error {
	r := &release{fn: fn}
	t.mu.Lock()
	t.releases = append(t.releases, r)
	t.mu.Unlock()
	return r.run
}

// Providers returns the connected providers in connection order.
func (t *Toolset) Providers() []Provider {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Provider(nil), t.providers...)
}

// Tools returns the remote tools of every connected provider, in provider
// order.
func (t *Toolset) Tools() []recall.Tool {
	var out []recall.Tool
	for _, p := range t.Providers() {
		out = append(out, p.Tools...)
	}
	return out
}

// Release closes the named provider's session ahead of Close and drops it
// from the set. Its tools fail with recall.ErrToolUnavailable afterwards.
// Unknown names are ignored.
func (t *Toolset) Release(name string) error {
	t.mu.Lock()
	var rel func() error
	for i, p := range t.providers {
		if p.Name == name {
			rel = p.release
			t.providers = append(t.providers[:i:i], t.providers[i+1:]...)
			break
		}
	}
	t.mu.Unlock()
	if rel == nil {
		return nil
	}
	return rel()
}

// Close releases every provider session, last acquired first. Remote tools
// fail with recall.ErrToolUnavailable afterwards. Close is idempotent.
func (t *Toolset) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	releases := t.releases
	t.mu.Unlock()

	var errs []error
	for i := len(releases) - 1; i >= 0; i-- {
		if err := releases[i].run(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
