// Package site opens the configured site store. It is the public entry
// point for callers that want a types.Site without depending on a backend
// package directly.
package site

import (
	"context"
	"log/slog"

	"github.com/mesh-intelligence/urlcoupons/internal/sqlite"
	"github.com/mesh-intelligence/urlcoupons/internal/wordpress"
	"github.com/mesh-intelligence/urlcoupons/pkg/types"
)

// Exporter is implemented by stores that can write a JSONL snapshot.
type Exporter interface {
	Export(ctx context.Context, dir string) error
}

// Open validates cfg and returns an attached store along with the function
// that releases it.
//
// Example:
//
//	s, closeFn, err := site.Open(ctx, types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".urlcoupons-db",
//	}, nil)
//	defer closeFn()
func Open(ctx context.Context, cfg types.Config, logger *slog.Logger) (types.Site, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case types.BackendWordPress:
		s, err := wordpress.OpenMySQL(ctx, cfg.DSN, cfg.GetTablePrefix(), wordpress.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		b := sqlite.NewBackend()
		if err := b.Attach(cfg); err != nil {
			return nil, nil, err
		}
		return b, b.Detach, nil
	}
}
