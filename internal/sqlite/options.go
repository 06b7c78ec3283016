// This file implements the option and transient stores.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/urlcoupons/pkg/types"
)

// Transient option prefixes, as WordPress stores transients without an
// external object cache.
const (
	transientPrefix        = "_transient_"
	transientTimeoutPrefix = "_transient_timeout_"
)

// GetOption decodes the named option into dst.
func (b *Backend) GetOption(ctx context.Context, name string, dst any) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return false, types.ErrSiteDetached
	}
	return b.getOptionLocked(ctx, name, dst)
}

// UpdateOption creates or replaces the named option.
func (b *Backend) UpdateOption(ctx context.Context, name string, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrSiteDetached
	}
	if err := b.updateOptionLocked(ctx, name, value); err != nil {
		return err
	}
	return b.persist(ctx, "options")
}

// DeleteOption removes the named option.
func (b *Backend) DeleteOption(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrSiteDetached
	}
	if err := b.deleteOptionLocked(ctx, name); err != nil {
		return err
	}
	return b.persist(ctx, "options")
}

// GetTransient decodes an unexpired transient into dst. Expired transients
// are removed on read.
func (b *Backend) GetTransient(ctx context.Context, name string, dst any) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return false, types.ErrSiteDetached
	}

	var timeout int64
	found, err := b.getOptionLocked(ctx, transientTimeoutPrefix+name, &timeout)
	if err != nil {
		return false, err
	}
	if found && timeout < b.now().Unix() {
		if err := b.deleteTransientLocked(ctx, name); err != nil {
			return false, err
		}
		return false, b.persist(ctx, "options")
	}
	return b.getOptionLocked(ctx, transientPrefix+name, dst)
}

// SetTransient stores value under name for ttl. A zero ttl never expires.
func (b *Backend) SetTransient(ctx context.Context, name string, value any, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrSiteDetached
	}

	if ttl > 0 {
		expires := b.now().Add(ttl).Unix()
		if err := b.updateOptionLocked(ctx, transientTimeoutPrefix+name, expires); err != nil {
			return err
		}
	} else if err := b.deleteOptionLocked(ctx, transientTimeoutPrefix+name); err != nil {
		return err
	}
	if err := b.updateOptionLocked(ctx, transientPrefix+name, value); err != nil {
		return err
	}
	return b.persist(ctx, "options")
}

// DeleteTransient removes the transient and its timeout.
func (b *Backend) DeleteTransient(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrSiteDetached
	}
	if err := b.deleteTransientLocked(ctx, name); err != nil {
		return err
	}
	return b.persist(ctx, "options")
}

func (b *Backend) getOptionLocked(ctx context.Context, name string, dst any) (bool, error) {
	var raw string
	err := b.db.QueryRowContext(ctx,
		"SELECT option_value FROM options WHERE option_name = ?", name,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("getting option %s: %w", name, err)
	}
	if dst == nil {
		return true, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return true, fmt.Errorf("decoding option %s: %w", name, err)
	}
	return true, nil
}

func (b *Backend) updateOptionLocked(ctx context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding option %s: %w", name, err)
	}
	_, err = b.db.ExecContext(ctx,
		`INSERT INTO options (option_name, option_value) VALUES (?, ?)
		 ON CONFLICT(option_name) DO UPDATE SET option_value = excluded.option_value`,
		name, string(data),
	)
	if err != nil {
		return fmt.Errorf("updating option %s: %w", name, err)
	}
	return nil
}

func (b *Backend) deleteOptionLocked(ctx context.Context, name string) error {
	if _, err := b.db.ExecContext(ctx, "DELETE FROM options WHERE option_name = ?", name); err != nil {
		return fmt.Errorf("deleting option %s: %w", name, err)
	}
	return nil
}

func (b *Backend) deleteTransientLocked(ctx context.Context, name string) error {
	if err := b.deleteOptionLocked(ctx, transientPrefix+name); err != nil {
		return err
	}
	return b.deleteOptionLocked(ctx, transientTimeoutPrefix+name)
}
