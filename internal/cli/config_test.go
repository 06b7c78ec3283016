package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigDir(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name   string
		flag   string
		envVal string
		want   string
	}{
		{name: "flag wins over env", flag: "/explicit/config", envVal: "/env/config", want: "/explicit/config"},
		{name: "env wins when flag empty", envVal: "/env/config", want: "/env/config"},
		{name: "CWD default when both empty", want: filepath.Join(cwd, defaultConfigDirName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envConfigDir, tt.envVal)
			a := &app{flags: rootFlags{configDir: tt.flag}}
			got, err := a.resolveConfigDir()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name   string
		flag   string
		cfgVal string
		envVal string
		want   string
	}{
		{name: "flag wins over all", flag: "/flag/data", cfgVal: "/cfg/data", envVal: "/env/data", want: "/flag/data"},
		{name: "config value when flag empty", cfgVal: "/cfg/data", envVal: "/env/data", want: "/cfg/data"},
		{name: "env when nothing configured", envVal: "/env/data", want: "/env/data"},
		{name: "CWD default", want: filepath.Join(cwd, defaultDataDirName)},
		{name: "relative paths become absolute", flag: "rel", want: filepath.Join(cwd, "rel")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envDataDir, tt.envVal)
			v := viper.New()
			v.Set(cfgKeyDataDir, tt.cfgVal)
			a := &app{flags: rootFlags{dataDir: tt.flag}, cfg: v}
			got, err := a.resolveDataDir()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
