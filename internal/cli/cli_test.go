package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/urlcoupons/internal/lifecycle"
	"github.com/mesh-intelligence/urlcoupons/internal/sqlite"
	"github.com/mesh-intelligence/urlcoupons/pkg/types"
	"github.com/mesh-intelligence/urlcoupons/pkg/urlcoupons"
)

type testEnv struct {
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, k := range []string{"URLCOUPONS_BACKEND", "URLCOUPONS_DSN", "URLCOUPONS_REDIS_ADDR", "URLCOUPONS_PLUGIN_VERSION", "URLCOUPONS_WC_VERSION", "URLCOUPONS_DATA_DIR", "URLCOUPONS_CONFIG_DIR"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	return &testEnv{
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

// run executes the CLI with the env's directories and returns stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := root.Execute()
	return stdout.String(), err
}

// seed writes fixture data straight into the SQLite store.
func (e *testEnv) seed(t *testing.T, fn func(ctx context.Context, b *sqlite.Backend)) {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: e.dataDir}))
	fn(context.Background(), b)
	require.NoError(t, b.Detach())
}

func TestVersion(t *testing.T) {
	e := newTestEnv(t)
	out, err := e.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "urlcoupons v"+urlcoupons.Version)
	assert.Contains(t, out, urlcoupons.PluginVersion)
}

func TestInitCreatesConfigAndStore(t *testing.T) {
	e := newTestEnv(t)
	out, err := e.run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized sqlite site store")

	_, err = os.Stat(filepath.Join(e.configDir, "config.yaml"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(e.dataDir, "options.jsonl"))
	assert.NoError(t, err)
}

func TestUpgradeFreshInstall(t *testing.T) {
	e := newTestEnv(t)
	out, err := e.run(t, "--json", "upgrade")
	require.NoError(t, err)

	var res lifecycle.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, lifecycle.ActionInstall, res.Action)
	assert.Equal(t, urlcoupons.PluginVersion, res.To)

	out, err = e.run(t, "upgrade")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestUpgradeMigratesRegistry(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, func(ctx context.Context, b *sqlite.Backend) {
		_, err := b.InsertPost(ctx, &types.Post{ID: 5, Title: "gone", Type: types.TypeShopCoupon, Status: types.StatusTrash})
		require.NoError(t, err)
		_, err = b.InsertPost(ctx, &types.Post{ID: 6, Title: "save10", Type: types.TypeShopCoupon, Status: types.StatusPublish})
		require.NoError(t, err)
		_, err = b.InsertPost(ctx, &types.Post{ID: 10, Title: "Shirt", Type: types.TypeProductVariation, Status: types.StatusPublish})
		require.NoError(t, err)
		require.NoError(t, b.UpdateOption(ctx, types.OptionActiveURLs, types.Registry{
			5: {"force": true},
			6: {"force": true, "redirect": 10},
		}))
		require.NoError(t, b.UpdateOption(ctx, types.OptionVersion, "1.0.0"))
		require.NoError(t, b.UpdateOption(ctx, types.OptionWooCommerceVer, "3.6.0"))
	})

	out, err := e.run(t, "--json", "status")
	require.NoError(t, err)
	var st status
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, "1.0.0", st.Installed)
	assert.Equal(t, "crud", st.Generation)
	assert.Equal(t, []string{"1.0.2", "2.0.0", "2.1.1"}, st.Pending)

	out, err = e.run(t, "upgrade", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "[dry run]")

	out, err = e.run(t, "upgrade")
	require.NoError(t, err)
	assert.Contains(t, out, "upgraded v1.0.0 -> v2.5.1 (steps: 1.0.2, 2.0.0, 2.1.1)")

	out, err = e.run(t, "--json", "registry")
	require.NoError(t, err)
	var reg types.Registry
	require.NoError(t, json.Unmarshal([]byte(out), &reg))
	require.Len(t, reg, 1)
	assert.Equal(t, true, reg[6]["defer"])
	assert.Equal(t, "product", reg[6]["redirect_page_type"])

	out, err = e.run(t, "--json", "events")
	require.NoError(t, err)
	var events []lifecycle.Event
	require.NoError(t, json.Unmarshal([]byte(out), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "upgrade", events[0].Name)
}

func TestCouponGet(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, func(ctx context.Context, b *sqlite.Backend) {
		_, err := b.InsertPost(ctx, &types.Post{ID: 7, Title: "spring", Type: types.TypeShopCoupon, Status: types.StatusPublish})
		require.NoError(t, err)
		require.NoError(t, b.UpdatePostMeta(ctx, 7, "expiry_date", "2017-05-01"))
		require.NoError(t, b.UpdatePostMeta(ctx, 7, "date_expires", "1493596800"))
	})

	out, err := e.run(t, "--wc-version", "2.6.14", "coupon", "get", "7", "date_expires")
	require.NoError(t, err)
	assert.Equal(t, "2017-05-01\n", out)

	out, err = e.run(t, "--wc-version", "3.1.0", "coupon", "get", "spring", "date_expires")
	require.NoError(t, err)
	assert.Equal(t, "1493596800\n", out)

	_, err = e.run(t, "coupon", "get", "404", "date_expires")
	require.Error(t, err)
	assert.Equal(t, exitUserError, ExitCode(err))
}

func TestExport(t *testing.T) {
	e := newTestEnv(t)
	dest := filepath.Join(t.TempDir(), "snapshot")
	_, err := e.run(t, "upgrade")
	require.NoError(t, err)

	out, err := e.run(t, "export", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "exported to")

	data, err := os.ReadFile(filepath.Join(dest, "options.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), types.OptionVersion)
}

func TestConfigErrorsAreUserErrors(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run(t, "--backend", "postgres", "status")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
	assert.Equal(t, exitUserError, ExitCode(err))

	_, err = e.run(t, "--backend", "wordpress", "status")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrDSNRequired)
	assert.Equal(t, exitUserError, ExitCode(err))

	_, err = e.run(t, "--plugin-version", "banana", "upgrade")
	require.Error(t, err)
	assert.Equal(t, exitUserError, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, ExitCode(nil))
	assert.Equal(t, exitSysError, ExitCode(sysError(os.ErrPermission)))
	assert.Equal(t, exitUserError, ExitCode(os.ErrInvalid))
}
