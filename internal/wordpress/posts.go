package wordpress

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mesh-intelligence/urlcoupons/pkg/types"
)

// GetPost returns the post with the given ID, or nil when it does not exist.
func (s *Store) GetPost(ctx context.Context, id int64) (*types.Post, error) {
	var row Post
	err := s.table(ctx, "posts").Where("ID = ?", id).Take(&row).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting post %d: %w", id, err)
	}
	return &types.Post{ID: row.ID, Title: row.PostTitle, Type: row.PostType, Status: row.PostStatus}, nil
}

// PostStatus returns the post status, or "" when the post does not exist.
func (s *Store) PostStatus(ctx context.Context, id int64) (string, error) {
	p, err := s.GetPost(ctx, id)
	if err != nil || p == nil {
		return "", err
	}
	return p.Status, nil
}

// PostType returns the post type, or "" when the post does not exist.
func (s *Store) PostType(ctx context.Context, id int64) (string, error) {
	p, err := s.GetPost(ctx, id)
	if err != nil || p == nil {
		return "", err
	}
	return p.Type, nil
}

// CouponCodeByID returns the title of the shop_coupon post with the given ID.
func (s *Store) CouponCodeByID(ctx context.Context, id int64) (string, error) {
	p, err := s.GetPost(ctx, id)
	if err != nil || p == nil || p.Type != types.TypeShopCoupon {
		return "", err
	}
	return p.Title, nil
}

// CouponIDByCode returns the newest published shop_coupon with the given
// code, matching wc_get_coupon_id_by_code.
func (s *Store) CouponIDByCode(ctx context.Context, code string) (int64, error) {
	var row Post
	err := s.table(ctx, "posts").
		Select("ID").
		Where("post_title = ? AND post_type = ? AND post_status = ?", code, types.TypeShopCoupon, types.StatusPublish).
		Order("post_date DESC").Order("ID DESC").
		Take(&row).Error
	if notFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("looking up coupon %q: %w", code, err)
	}
	return row.ID, nil
}

// InsertPost stores a post and returns its ID. A zero ID is assigned.
func (s *Store) InsertPost(ctx context.Context, post *types.Post) (int64, error) {
	row := Post{
		ID:         post.ID,
		PostTitle:  post.Title,
		PostType:   post.Type,
		PostStatus: post.Status,
		PostDate:   s.now().UTC(),
	}
	if err := s.table(ctx, "posts").Create(&row).Error; err != nil {
		return 0, fmt.Errorf("inserting post: %w", err)
	}
	post.ID = row.ID
	return row.ID, nil
}

// GetPostMeta returns the first value for key, or "" when absent.
func (s *Store) GetPostMeta(ctx context.Context, postID int64, key string) (string, error) {
	var row Postmeta
	err := s.table(ctx, "postmeta").
		Where("post_id = ? AND meta_key = ?", postID, key).
		Order("meta_id ASC").
		Take(&row).Error
	if notFound(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting meta %s of post %d: %w", key, postID, err)
	}
	return row.MetaValue, nil
}

// GetAllPostMeta returns the first value of every key on the post.
func (s *Store) GetAllPostMeta(ctx context.Context, postID int64) (map[string]string, error) {
	var rows []Postmeta
	err := s.table(ctx, "postmeta").
		Where("post_id = ?", postID).
		Order("meta_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("getting meta of post %d: %w", postID, err)
	}
	meta := make(map[string]string, len(rows))
	for _, r := range rows {
		if _, ok := meta[r.MetaKey]; !ok {
			meta[r.MetaKey] = r.MetaValue
		}
	}
	return meta, nil
}

// UpdatePostMeta sets every value of key to value, adding the key when it
// is missing.
func (s *Store) UpdatePostMeta(ctx context.Context, postID int64, key, value string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Table(s.prefix+"postmeta").
			Where("post_id = ? AND meta_key = ?", postID, key).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return tx.Table(s.prefix + "postmeta").Create(&Postmeta{PostID: postID, MetaKey: key, MetaValue: value}).Error
		}
		return tx.Table(s.prefix+"postmeta").
			Where("post_id = ? AND meta_key = ?", postID, key).
			Update("meta_value", value).Error
	})
	if err != nil {
		return fmt.Errorf("updating meta %s of post %d: %w", key, postID, err)
	}
	return nil
}

// DeletePostMeta removes every value of key.
func (s *Store) DeletePostMeta(ctx context.Context, postID int64, key string) error {
	err := s.table(ctx, "postmeta").
		Where("post_id = ? AND meta_key = ?", postID, key).
		Delete(&Postmeta{}).Error
	if err != nil {
		return fmt.Errorf("deleting meta %s of post %d: %w", key, postID, err)
	}
	return nil
}
