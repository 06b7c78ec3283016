package types

// Post is a WordPress content handle.
type Post struct {
	ID     int64  `json:"id"`
	Title  string `json:"post_title"`
	Type   string `json:"post_type"`
	Status string `json:"post_status"`
}

// Post statuses and types the lifecycle cares about.
const (
	StatusPublish = "publish"
	StatusTrash   = "trash"
	StatusDraft   = "draft"

	TypePage             = "page"
	TypeProduct          = "product"
	TypeProductVariation = "product_variation"
	TypeShopCoupon       = "shop_coupon"
)
