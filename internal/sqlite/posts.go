// This file implements the post and post meta stores.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/urlcoupons/pkg/types"
)

// GetPost returns the post with the given ID, or nil when it does not exist.
func (b *Backend) GetPost(ctx context.Context, id int64) (*types.Post, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrSiteDetached
	}

	var p types.Post
	err := b.db.QueryRowContext(ctx,
		"SELECT id, post_title, post_type, post_status FROM posts WHERE id = ?", id,
	).Scan(&p.ID, &p.Title, &p.Type, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting post %d: %w", id, err)
	}
	return &p, nil
}

// PostStatus returns the post status, or "" when the post does not exist.
func (b *Backend) PostStatus(ctx context.Context, id int64) (string, error) {
	p, err := b.GetPost(ctx, id)
	if err != nil || p == nil {
		return "", err
	}
	return p.Status, nil
}

// PostType returns the post type, or "" when the post does not exist.
func (b *Backend) PostType(ctx context.Context, id int64) (string, error) {
	p, err := b.GetPost(ctx, id)
	if err != nil || p == nil {
		return "", err
	}
	return p.Type, nil
}

// CouponCodeByID returns the title of the shop_coupon post with the given ID.
func (b *Backend) CouponCodeByID(ctx context.Context, id int64) (string, error) {
	p, err := b.GetPost(ctx, id)
	if err != nil || p == nil || p.Type != types.TypeShopCoupon {
		return "", err
	}
	return p.Title, nil
}

// CouponIDByCode returns the newest published shop_coupon with the given code.
func (b *Backend) CouponIDByCode(ctx context.Context, code string) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrSiteDetached
	}

	var id int64
	err := b.db.QueryRowContext(ctx,
		`SELECT id FROM posts
		 WHERE post_title = ? AND post_type = ? AND post_status = ?
		 ORDER BY post_date DESC, id DESC LIMIT 1`,
		code, types.TypeShopCoupon, types.StatusPublish,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("looking up coupon %q: %w", code, err)
	}
	return id, nil
}

// InsertPost stores a post and returns its ID. A zero ID is assigned.
func (b *Backend) InsertPost(ctx context.Context, post *types.Post) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return 0, types.ErrSiteDetached
	}

	date := b.now().UTC().Format("2006-01-02 15:04:05")
	var res sql.Result
	var err error
	if post.ID > 0 {
		res, err = b.db.ExecContext(ctx,
			"INSERT INTO posts (id, post_title, post_type, post_status, post_date) VALUES (?, ?, ?, ?, ?)",
			post.ID, post.Title, post.Type, post.Status, date)
	} else {
		res, err = b.db.ExecContext(ctx,
			"INSERT INTO posts (post_title, post_type, post_status, post_date) VALUES (?, ?, ?, ?)",
			post.Title, post.Type, post.Status, date)
	}
	if err != nil {
		return 0, fmt.Errorf("inserting post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading post id: %w", err)
	}
	post.ID = id
	return id, b.persist(ctx, "posts")
}

// GetPostMeta returns the first value for key, or "" when absent.
func (b *Backend) GetPostMeta(ctx context.Context, postID int64, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return "", types.ErrSiteDetached
	}

	var v string
	err := b.db.QueryRowContext(ctx,
		"SELECT meta_value FROM postmeta WHERE post_id = ? AND meta_key = ? ORDER BY meta_id LIMIT 1",
		postID, key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting meta %s for post %d: %w", key, postID, err)
	}
	return v, nil
}

// GetAllPostMeta returns the first value of every meta key on the post.
func (b *Backend) GetAllPostMeta(ctx context.Context, postID int64) (map[string]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrSiteDetached
	}

	rows, err := b.db.QueryContext(ctx,
		"SELECT meta_key, meta_value FROM postmeta WHERE post_id = ? ORDER BY meta_id", postID)
	if err != nil {
		return nil, fmt.Errorf("listing meta for post %d: %w", postID, err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning meta for post %d: %w", postID, err)
		}
		if _, seen := meta[k]; !seen {
			meta[k] = v
		}
	}
	return meta, rows.Err()
}

// UpdatePostMeta sets every value of key to value, adding the key if missing.
func (b *Backend) UpdatePostMeta(ctx context.Context, postID int64, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrSiteDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE postmeta SET meta_value = ? WHERE post_id = ? AND meta_key = ?",
		value, postID, key)
	if err != nil {
		return fmt.Errorf("updating meta %s for post %d: %w", key, postID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO postmeta (post_id, meta_key, meta_value) VALUES (?, ?, ?)",
			postID, key, value); err != nil {
			return fmt.Errorf("adding meta %s for post %d: %w", key, postID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing meta %s for post %d: %w", key, postID, err)
	}
	return b.persist(ctx, "postmeta")
}

// DeletePostMeta removes every value of key from the post.
func (b *Backend) DeletePostMeta(ctx context.Context, postID int64, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrSiteDetached
	}

	res, err := b.db.ExecContext(ctx,
		"DELETE FROM postmeta WHERE post_id = ? AND meta_key = ?", postID, key)
	if err != nil {
		return fmt.Errorf("deleting meta %s for post %d: %w", key, postID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	return b.persist(ctx, "postmeta")
}
