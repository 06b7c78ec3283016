// Tests for JSONL persistence in the SQLite store.
package sqlite

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/urlcoupons/pkg/types"
)

func TestJSONLFilesInitializedEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	attachTestBackend(t, tmpDir)

	info, err := os.Stat(filepath.Join(tmpDir, optionsJSONL))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestReadJSONLSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.jsonl")
	content := `{"a":1}
not json

{"b":2}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := readJSONL(path)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestWriteJSONLAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	err := writeJSONL(path, []json.RawMessage{json.RawMessage(`{"n":1}`), json.RawMessage(`{"n":2}`)})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"n\":1}\n{\"n\":2}\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file left behind: %s", e.Name())
	}
}

func TestOptionValuesPersistAsRawJSON(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b := attachTestBackend(t, dir)

	require.NoError(t, b.UpdateOption(ctx, types.OptionActiveURLs, types.Registry{7: {"redirect": 3}}))

	records, err := readJSONL(filepath.Join(dir, optionsJSONL))
	require.NoError(t, err)
	require.Len(t, records, 1)

	var rec struct {
		OptionName  string          `json:"option_name"`
		OptionValue json.RawMessage `json:"option_value"`
	}
	require.NoError(t, json.Unmarshal(records[0], &rec))
	assert.Equal(t, types.OptionActiveURLs, rec.OptionName)
	assert.JSONEq(t, `{"7":{"redirect":3}}`, string(rec.OptionValue))
}

func TestOnCloseSyncDefersPersistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend:      types.BackendSQLite,
		DataDir:      dir,
		SQLiteConfig: &types.SQLiteConfig{SyncStrategy: types.SyncOnClose},
	}))

	require.NoError(t, b.UpdateOption(ctx, types.OptionVersion, "2.7.4"))

	info, err := os.Stat(filepath.Join(dir, optionsJSONL))
	require.NoError(t, err)
	assert.Zero(t, info.Size(), "options.jsonl written before Detach")

	require.NoError(t, b.Detach())

	records, err := readJSONL(filepath.Join(dir, optionsJSONL))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestExportWritesSnapshot(t *testing.T) {
	ctx := context.Background()
	b := attachTestBackend(t, t.TempDir())

	_, err := b.InsertPost(ctx, &types.Post{ID: 5, Title: "SAVE5", Type: types.TypeShopCoupon, Status: types.StatusPublish})
	require.NoError(t, err)
	require.NoError(t, b.UpdatePostMeta(ctx, 5, types.MetaDeferApply, "yes"))

	out := filepath.Join(t.TempDir(), "snapshot")
	require.NoError(t, b.Export(ctx, out))

	for _, name := range []string{optionsJSONL, postsJSONL, postMetaJSONL} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
	posts, err := readJSONL(filepath.Join(out, postsJSONL))
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}
