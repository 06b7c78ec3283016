package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "sqlite with empty DataDir is valid at config level",
			config:  Config{Backend: "sqlite", DataDir: ""},
			wantErr: nil,
		},
		{
			name:    "wordpress without dsn returns ErrDSNRequired",
			config:  Config{Backend: "wordpress"},
			wantErr: ErrDSNRequired,
		},
		{
			name:    "wordpress with dsn",
			config:  Config{Backend: "wordpress", DSN: "wp:wp@tcp(127.0.0.1:3306)/wordpress"},
			wantErr: nil,
		},
		{
			name: "unknown sync strategy returns ErrSyncStrategyUnknown",
			config: Config{
				Backend:      "sqlite",
				SQLiteConfig: &SQLiteConfig{SyncStrategy: "batch"},
			},
			wantErr: ErrSyncStrategyUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	if got := c.GetTablePrefix(); got != DefaultTablePrefix {
		t.Errorf("GetTablePrefix() = %q, want %q", got, DefaultTablePrefix)
	}
	if got := c.SQLiteConfig.GetSyncStrategy(); got != SyncImmediate {
		t.Errorf("GetSyncStrategy() = %q, want %q", got, SyncImmediate)
	}

	c.TablePrefix = "shop_"
	c.SQLiteConfig = &SQLiteConfig{SyncStrategy: SyncOnClose}
	if got := c.GetTablePrefix(); got != "shop_" {
		t.Errorf("GetTablePrefix() = %q, want shop_", got)
	}
	if got := c.SQLiteConfig.GetSyncStrategy(); got != SyncOnClose {
		t.Errorf("GetSyncStrategy() = %q, want %q", got, SyncOnClose)
	}
}
