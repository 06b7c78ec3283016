// Package sqlite implements a local site store on SQLite. The JSONL files in
// the data directory are the source of truth; SQLite is the query engine and
// is rebuilt from them on every Attach.
package sqlite

// Schema DDL mirroring the WordPress tables the lifecycle touches.
const (
	createOptions = `CREATE TABLE options (
    option_id INTEGER PRIMARY KEY AUTOINCREMENT,
    option_name TEXT NOT NULL UNIQUE,
    option_value TEXT NOT NULL,
    autoload TEXT NOT NULL DEFAULT 'yes'
);`

	createPosts = `CREATE TABLE posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_title TEXT NOT NULL DEFAULT '',
    post_type TEXT NOT NULL DEFAULT 'post',
    post_status TEXT NOT NULL DEFAULT 'publish',
    post_date TEXT NOT NULL DEFAULT ''
);`

	createPostMeta = `CREATE TABLE postmeta (
    meta_id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_id INTEGER NOT NULL,
    meta_key TEXT NOT NULL,
    meta_value TEXT NOT NULL DEFAULT ''
);`
)

// Index DDL for common lookups.
const (
	idxPostsTypeStatusTitle = `CREATE INDEX idx_posts_type_status_title ON posts(post_type, post_status, post_title);`
	idxPostMetaPost         = `CREATE INDEX idx_postmeta_post ON postmeta(post_id);`
	idxPostMetaKey          = `CREATE INDEX idx_postmeta_key ON postmeta(post_id, meta_key);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createOptions,
	createPosts,
	createPostMeta,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxPostsTypeStatusTitle,
	idxPostMetaPost,
	idxPostMetaKey,
}
