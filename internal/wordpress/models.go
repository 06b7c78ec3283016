package wordpress

import "time"

// Option is a row of <prefix>options.
type Option struct {
	OptionID    uint64 `gorm:"column:option_id;primaryKey;autoIncrement"`
	OptionName  string `gorm:"column:option_name;size:191;uniqueIndex"`
	OptionValue string `gorm:"column:option_value;type:longtext"`
	Autoload    string `gorm:"column:autoload;size:20;default:'yes'"`
}

// Post is the subset of <prefix>posts the store reads and writes.
type Post struct {
	ID         int64     `gorm:"column:ID;primaryKey;autoIncrement"`
	PostTitle  string    `gorm:"column:post_title;type:text"`
	PostType   string    `gorm:"column:post_type;size:20;index:type_status_date,priority:1"`
	PostStatus string    `gorm:"column:post_status;size:20;index:type_status_date,priority:2"`
	PostDate   time.Time `gorm:"column:post_date;index:type_status_date,priority:3"`
}

// Postmeta is a row of <prefix>postmeta.
type Postmeta struct {
	MetaID    uint64 `gorm:"column:meta_id;primaryKey;autoIncrement"`
	PostID    int64  `gorm:"column:post_id;index"`
	MetaKey   string `gorm:"column:meta_key;size:191;index"`
	MetaValue string `gorm:"column:meta_value;type:longtext"`
}
