// Package session persists the per-page selections of browser sessions.
//
// A session is identified by an opaque id minted by the HTTP server. Each page of a
// session keeps its own Selection; writes are last-writer-wins.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyluth/commviz/internal/config"
	"github.com/dyluth/commviz/pkg/artifact"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store keeps one Selection per (session, page).
// Implementations are safe for concurrent use.
type Store interface {
	// Get returns the stored selection. Unknown sessions yield an empty, non-nil selection.
	Get(ctx context.Context, page artifact.PageName, id string) (artifact.Selection, error)

	// Put replaces the stored selection. An empty selection removes the entry.
	Put(ctx context.Context, page artifact.PageName, id string, sel artifact.Selection) error

	// Delete removes the stored selection, if any.
	Delete(ctx context.Context, page artifact.PageName, id string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// New builds the store selected by cfg.Sessions.
func New(cfg *config.Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Sessions.Backend {
	case config.BackendMemory, "":
		logger.Debug("using in-memory session store", zap.Duration("ttl", cfg.SessionTTL()))
		return NewMemoryStore(cfg.SessionTTL()), nil

	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.Sessions.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		logger.Debug("using redis session store",
			zap.String("addr", opts.Addr),
			zap.Int("db", opts.DB),
			zap.String("namespace", cfg.Sessions.Namespace),
			zap.Duration("ttl", cfg.SessionTTL()))
		return NewRedisStore(opts, cfg.Sessions.Namespace, cfg.SessionTTL())
	}

	return nil, fmt.Errorf("unknown session backend: %s", cfg.Sessions.Backend)
}

// validateID rejects ids that would break key namespacing.
func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("session id cannot be empty")
	}
	if strings.ContainsAny(id, ": \t\n") {
		return fmt.Errorf("invalid session id '%s'", id)
	}
	return nil
}
