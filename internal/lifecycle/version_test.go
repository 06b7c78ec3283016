package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2.5.0", "2.5.0", 0},
		{"2.5", "2.5.0", -1},
		{"2.5.0", "2.5", 1},
		{"2.5.0.1", "2.5.1", -1},
		{"2.5.0.1", "2.5.0", 1},
		{"1.0.2.1", "1.0.2", 1},
		{"1.0.2.1", "2.0.0", -1},
		{"2.10.0", "2.9.9", 1},
		{"2.5.1-beta", "2.5.1", -1},
		{"2.5.1RC1", "2.5.1beta2", 1},
		{"2.5.1dev", "2.5.1alpha", -1},
		{"2.5.1pl1", "2.5.1", 1},
		{"", "1.0.0", -1},
		{"", "", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, compareVersions(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestValidVersion(t *testing.T) {
	for _, v := range []string{"2.5.1", "2.5", "2.5.0.1", "3", "2.6.0-beta1"} {
		assert.True(t, validVersion(v), v)
	}
	for _, v := range []string{"", "banana", "v2.5.1", "..."} {
		assert.False(t, validVersion(v), v)
	}
}
