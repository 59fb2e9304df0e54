// Package mock provides test doubles for recall interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/recall"
)

// Interface compliance check.
var _ recall.Provider = (*Provider)(nil)

// Provider is a test double for recall.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req recall.Request) (recall.Stream, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req recall.Request) (recall.Stream, error) {
	return p.StreamFn(ctx, req)
}
