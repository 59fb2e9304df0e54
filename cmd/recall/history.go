package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fwojciec/recall"
	"github.com/fwojciec/recall/config"
	recalljson "github.com/fwojciec/recall/json"
	"github.com/fwojciec/recall/sqlite"
)

type historyStore interface {
	recall.History
	io.Closer
}

func openHistory(ctx context.Context, s config.Store) (historyStore, error) {
	switch s.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, s.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverJSON:
		return recalljson.NewStore(s.DSN), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q: %w", s.Driver, recall.ErrConfiguration)
	}
}
