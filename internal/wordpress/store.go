// Package wordpress implements the site store against a live WordPress
// database through GORM. Table names honor the site's table prefix and
// option values use WordPress's PHP serialization.
package wordpress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mesh-intelligence/urlcoupons/pkg/types"
)

// Connection retry limits.
const (
	maxConnectRetries = 5
	maxConnectElapsed = 30 * time.Second
)

// Store is a types.Site backed by the WordPress options, posts and postmeta
// tables.
type Store struct {
	db     *gorm.DB
	prefix string
	log    *slog.Logger
	now    func() time.Time
}

var _ types.Site = (*Store)(nil)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for connection retries.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

// Open connects through dialector, retrying with exponential backoff until
// the database answers a ping.
func Open(ctx context.Context, dialector gorm.Dialector, prefix string, opts ...StoreOption) (*Store, error) {
	s := &Store{prefix: prefix, log: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.prefix == "" {
		s.prefix = types.DefaultTablePrefix
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxConnectElapsed
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, maxConnectRetries), ctx)

	connect := func() error {
		db, err := gorm.Open(dialector, &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			sqlDB.Close()
			return err
		}
		s.db = db
		return nil
	}
	notify := func(err error, wait time.Duration) {
		s.log.Warn("database not reachable, retrying", "error", err, "wait", wait)
	}
	if err := backoff.RetryNotify(connect, policy, notify); err != nil {
		return nil, fmt.Errorf("connecting to WordPress database: %w", err)
	}
	return s, nil
}

// OpenMySQL connects to a WordPress MySQL database.
func OpenMySQL(ctx context.Context, dsn, prefix string, opts ...StoreOption) (*Store, error) {
	if dsn == "" {
		return nil, types.ErrDSNRequired
	}
	return Open(ctx, mysql.New(mysql.Config{
		DSN:                       dsn,
		DefaultStringSize:         191,
		SkipInitializeWithVersion: false,
	}), prefix, opts...)
}

// Migrate creates the tables the store uses when they are missing. Real
// WordPress installs already have them; this is for fixtures and tests.
func (s *Store) Migrate(ctx context.Context) error {
	tables := []struct {
		name  string
		model any
	}{
		{"options", &Option{}},
		{"posts", &Post{}},
		{"postmeta", &Postmeta{}},
	}
	for _, t := range tables {
		if err := s.table(ctx, t.name).AutoMigrate(t.model); err != nil {
			return fmt.Errorf("migrating %s: %w", s.prefix+t.name, err)
		}
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Prefix returns the table prefix in use.
func (s *Store) Prefix() string {
	return s.prefix
}

func (s *Store) table(ctx context.Context, name string) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.prefix + name)
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
