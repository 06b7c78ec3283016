package wordpress

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/mesh-intelligence/urlcoupons/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, sqlite.Open(filepath.Join(t.TempDir(), "wp.db")), "wptest_")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestOpenDefaultsPrefix(t *testing.T) {
	s, err := Open(context.Background(), sqlite.Open(filepath.Join(t.TempDir(), "wp.db")), "")
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, types.DefaultTablePrefix, s.Prefix())
}

func TestOpenMySQLRequiresDSN(t *testing.T) {
	_, err := OpenMySQL(context.Background(), "", "wp_")
	assert.ErrorIs(t, err, types.ErrDSNRequired)
}

func TestOptionsUsePrefixedTable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpdateOption(ctx, types.OptionVersion, "2.5.0"))

	var n int64
	require.NoError(t, s.db.Table("wptest_options").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestOptionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var missing string
	found, err := s.GetOption(ctx, "nope", &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.UpdateOption(ctx, types.OptionVersion, "2.5.0"))
	require.NoError(t, s.UpdateOption(ctx, types.OptionVersion, "2.5.1"))

	var v string
	found, err = s.GetOption(ctx, types.OptionVersion, &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2.5.1", v)

	var raw Option
	require.NoError(t, s.db.Table("wptest_options").Where("option_name = ?", types.OptionVersion).Take(&raw).Error)
	assert.Equal(t, "2.5.1", raw.OptionValue, "scalars are stored unserialized")

	require.NoError(t, s.DeleteOption(ctx, types.OptionVersion))
	found, err = s.GetOption(ctx, types.OptionVersion, &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRegistryIsPHPSerialized(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	reg := types.Registry{12: {"force": true, "redirect": 40}}
	require.NoError(t, s.UpdateOption(ctx, types.OptionActiveURLs, reg))

	var raw Option
	require.NoError(t, s.db.Table("wptest_options").Where("option_name = ?", types.OptionActiveURLs).Take(&raw).Error)
	assert.Equal(t, `a:1:{i:12;a:2:{s:5:"force";b:1;s:8:"redirect";i:40;}}`, raw.OptionValue)

	var got types.Registry
	_, err := s.GetOption(ctx, types.OptionActiveURLs, &got)
	require.NoError(t, err)
	require.Contains(t, got, int64(12))
	assert.Equal(t, true, got[12]["force"])
	assert.EqualValues(t, 40, got[12]["redirect"])
}

func TestReadsOptionWrittenByPHP(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	php := `a:2:{i:7;a:3:{s:5:"force";s:3:"yes";s:8:"redirect";s:2:"15";s:3:"url";s:4:"save";}i:9;a:0:{}}`
	require.NoError(t, s.db.Table("wptest_options").Create(&Option{OptionName: types.OptionActiveURLs, OptionValue: php, Autoload: "yes"}).Error)

	var got types.Registry
	found, err := s.GetOption(ctx, types.OptionActiveURLs, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "yes", got[7]["force"])
	assert.Equal(t, "15", got[7]["redirect"])
	assert.Equal(t, "save", got[7]["url"])
	assert.Contains(t, got, int64(9))
	assert.Equal(t, int64(15), got[7].Redirect())
}

func TestScalarOptionDecodesGeneric(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.db.Table("wptest_options").Create(&Option{OptionName: types.OptionActiveURLs, OptionValue: "garbage", Autoload: "yes"}).Error)

	var got any
	found, err := s.GetOption(ctx, types.OptionActiveURLs, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "garbage", got)
}

func TestEmptyOptionDecodesAsZero(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.db.Table("wptest_options").Create(&Option{OptionName: types.OptionActiveURLs, OptionValue: "", Autoload: "yes"}).Error)

	var got types.Registry
	found, err := s.GetOption(ctx, types.OptionActiveURLs, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Nil(t, got)
}

func TestTransients(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	s.now = func() time.Time { return now }

	require.NoError(t, s.SetTransient(ctx, types.TransientActiveURLs, map[string]any{"a": 1}, time.Minute))

	var got map[string]any
	found, err := s.GetTransient(ctx, types.TransientActiveURLs, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.EqualValues(t, 1, got["a"])

	now = now.Add(2 * time.Minute)
	found, err = s.GetTransient(ctx, types.TransientActiveURLs, &got)
	require.NoError(t, err)
	assert.False(t, found)

	var n int64
	require.NoError(t, s.db.Table("wptest_options").Count(&n).Error)
	assert.Zero(t, n, "expired transient and timeout are removed")

	require.NoError(t, s.SetTransient(ctx, "forever", "x", 0))
	require.NoError(t, s.DeleteTransient(ctx, "forever"))
	found, err = s.GetTransient(ctx, "forever", nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPostsAndCoupons(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.InsertPost(ctx, &types.Post{Title: "save10", Type: types.TypeShopCoupon, Status: types.StatusPublish})
	require.NoError(t, err)
	_, err = s.InsertPost(ctx, &types.Post{ID: 50, Title: "Shirt", Type: types.TypeProductVariation, Status: types.StatusPublish})
	require.NoError(t, err)

	status, err := s.PostStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPublish, status)

	pt, err := s.PostType(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, types.TypeProductVariation, pt)

	pt, err = s.PostType(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, pt)

	code, err := s.CouponCodeByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "save10", code)

	code, err = s.CouponCodeByID(ctx, 50)
	require.NoError(t, err)
	assert.Empty(t, code, "not a coupon")

	got, err := s.CouponIDByCode(ctx, "save10")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = s.CouponIDByCode(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestPostMeta(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	v, err := s.GetPostMeta(ctx, 1, types.MetaDeferApply)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.UpdatePostMeta(ctx, 1, types.MetaDeferApply, "no"))
	require.NoError(t, s.UpdatePostMeta(ctx, 1, types.MetaDeferApply, "yes"))
	require.NoError(t, s.UpdatePostMeta(ctx, 1, "discount_type", "percent"))

	v, err = s.GetPostMeta(ctx, 1, types.MetaDeferApply)
	require.NoError(t, err)
	assert.Equal(t, "yes", v)

	all, err := s.GetAllPostMeta(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{types.MetaDeferApply: "yes", "discount_type": "percent"}, all)

	require.NoError(t, s.DeletePostMeta(ctx, 1, types.MetaDeferApply))
	v, err = s.GetPostMeta(ctx, 1, types.MetaDeferApply)
	require.NoError(t, err)
	assert.Empty(t, v)
}
