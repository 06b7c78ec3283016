package types

import (
	"context"
	"errors"
	"time"
)

// Site is the host store the lifecycle tooling reads and migrates: options,
// transients, posts, and post meta. Absent data is reported with zero
// values; errors are reserved for store failures.
type Site interface {
	Options
	Transients
	Content
	PostMeta
}

// Options is the WordPress key-value option store.
type Options interface {
	// GetOption decodes the named option into dst. It reports false and
	// leaves dst untouched when the option does not exist.
	GetOption(ctx context.Context, name string, dst any) (bool, error)

	// UpdateOption creates or replaces the named option.
	UpdateOption(ctx context.Context, name string, value any) error

	// DeleteOption removes the named option. Deleting a missing option is
	// not an error.
	DeleteOption(ctx context.Context, name string) error
}

// Transients is the short-lived cache store.
type Transients interface {
	// GetTransient decodes an unexpired transient into dst.
	GetTransient(ctx context.Context, name string, dst any) (bool, error)

	// SetTransient stores value for ttl; a zero ttl never expires.
	SetTransient(ctx context.Context, name string, value any, ttl time.Duration) error

	// DeleteTransient invalidates the named transient.
	DeleteTransient(ctx context.Context, name string) error
}

// Content is the post store.
type Content interface {
	// GetPost returns the post with the given ID, or nil when it does not exist.
	GetPost(ctx context.Context, id int64) (*Post, error)

	// PostStatus returns the post status, or "" when the post does not exist.
	PostStatus(ctx context.Context, id int64) (string, error)

	// PostType returns the post type, or "" when the post does not exist.
	PostType(ctx context.Context, id int64) (string, error)

	// CouponCodeByID returns the code (post title) of a shop_coupon post,
	// or "" when id is not a coupon.
	CouponCodeByID(ctx context.Context, id int64) (string, error)

	// CouponIDByCode returns the ID of the newest published shop_coupon with
	// the given code, or 0 when none exists.
	CouponIDByCode(ctx context.Context, code string) (int64, error)

	// InsertPost stores a post. A zero ID is assigned by the store.
	InsertPost(ctx context.Context, post *Post) (int64, error)
}

// PostMeta is the per-post metadata store. Values are stored as strings.
type PostMeta interface {
	// GetPostMeta returns the first value for key, or "" when absent.
	GetPostMeta(ctx context.Context, postID int64, key string) (string, error)

	// GetAllPostMeta returns the first value of every key on the post.
	GetAllPostMeta(ctx context.Context, postID int64) (map[string]string, error)

	// UpdatePostMeta sets key to value, adding the key when missing.
	UpdatePostMeta(ctx context.Context, postID int64, key, value string) error

	// DeletePostMeta removes every value of key. Missing keys are not an error.
	DeletePostMeta(ctx context.Context, postID int64, key string) error
}

// Site lifecycle errors.
var (
	ErrSiteDetached    = errors.New("site store is detached")
	ErrAlreadyAttached = errors.New("site store is already attached")
)
