package wordpress

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Transient option prefixes used when WordPress has no object cache.
const (
	transientPrefix        = "_transient_"
	transientTimeoutPrefix = "_transient_timeout_"
)

// GetOption decodes the named option into dst.
func (s *Store) GetOption(ctx context.Context, name string, dst any) (bool, error) {
	return s.getOption(s.table(ctx, "options"), name, dst)
}

// UpdateOption creates or replaces the named option.
func (s *Store) UpdateOption(ctx context.Context, name string, value any) error {
	return s.updateOption(s.table(ctx, "options"), name, value)
}

// DeleteOption removes the named option.
func (s *Store) DeleteOption(ctx context.Context, name string) error {
	if err := s.table(ctx, "options").Where("option_name = ?", name).Delete(&Option{}).Error; err != nil {
		return fmt.Errorf("deleting option %s: %w", name, err)
	}
	return nil
}

// GetTransient decodes an unexpired transient into dst. Expired transients
// are removed on read, as WordPress does.
func (s *Store) GetTransient(ctx context.Context, name string, dst any) (bool, error) {
	var timeout string
	found, err := s.GetOption(ctx, transientTimeoutPrefix+name, &timeout)
	if err != nil {
		return false, err
	}
	if found {
		expires, _ := strconv.ParseInt(timeout, 10, 64)
		if expires < s.now().Unix() {
			return false, s.DeleteTransient(ctx, name)
		}
	}
	return s.GetOption(ctx, transientPrefix+name, dst)
}

// SetTransient stores value under name for ttl. A zero ttl never expires.
func (s *Store) SetTransient(ctx context.Context, name string, value any, ttl time.Duration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		options := tx.Table(s.prefix + "options")
		if ttl > 0 {
			expires := s.now().Add(ttl).Unix()
			if err := s.updateOption(options.Session(&gorm.Session{}), transientTimeoutPrefix+name, expires); err != nil {
				return err
			}
		} else if err := options.Session(&gorm.Session{}).
			Where("option_name = ?", transientTimeoutPrefix+name).Delete(&Option{}).Error; err != nil {
			return err
		}
		return s.updateOption(options.Session(&gorm.Session{}), transientPrefix+name, value)
	})
}

// DeleteTransient removes the transient and its timeout.
func (s *Store) DeleteTransient(ctx context.Context, name string) error {
	err := s.table(ctx, "options").
		Where("option_name IN ?", []string{transientPrefix + name, transientTimeoutPrefix + name}).
		Delete(&Option{}).Error
	if err != nil {
		return fmt.Errorf("deleting transient %s: %w", name, err)
	}
	return nil
}

func (s *Store) getOption(db *gorm.DB, name string, dst any) (bool, error) {
	var row Option
	err := db.Where("option_name = ?", name).Take(&row).Error
	if notFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("getting option %s: %w", name, err)
	}
	if err := maybeUnserialize(row.OptionValue, dst); err != nil {
		return true, fmt.Errorf("decoding option %s: %w", name, err)
	}
	return true, nil
}

func (s *Store) updateOption(db *gorm.DB, name string, value any) error {
	raw, err := maybeSerialize(value)
	if err != nil {
		return fmt.Errorf("encoding option %s: %w", name, err)
	}
	row := Option{OptionName: name, OptionValue: raw, Autoload: "yes"}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "option_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"option_value"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("updating option %s: %w", name, err)
	}
	return nil
}
