package backend

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/config"
	"fintrack/internal/session"
	"fintrack/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("FromAppConfig(nil) error = nil")
	}
	if _, err := FromAppConfig(&config.Config{SessionBackend: "sheets"}); err == nil {
		t.Error("FromAppConfig(sheets) error = nil")
	}
	cfg, err := FromAppConfig(&config.Config{SessionBackend: "sqlite", SQLiteDBPath: "x.db"})
	if err != nil || cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" {
		t.Errorf("FromAppConfig() = %+v, %v", cfg, err)
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	tests := []struct {
		name    string
		config  Config
		wantErr bool
		check   func(t *testing.T, s session.BlobStorage)
	}{
		{
			name:   "memory",
			config: Config{Type: MemoryBackend},
			check: func(t *testing.T, s session.BlobStorage) {
				if _, ok := s.(*session.MemoryStorage); !ok {
					t.Errorf("storage = %T, want *session.MemoryStorage", s)
				}
			},
		},
		{
			name:   "sqlite",
			config: Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "s.db")},
			check: func(t *testing.T, s session.BlobStorage) {
				if _, ok := s.(*storage.SQLiteStorage); !ok {
					t.Errorf("storage = %T, want *storage.SQLiteStorage", s)
				}
			},
		},
		{name: "sqlite without path", config: Config{Type: SQLiteBackend}, wantErr: true},
		{name: "redis without address", config: Config{Type: RedisBackend}, wantErr: true},
		{name: "redis unreachable", config: Config{Type: RedisBackend, RedisAddr: "127.0.0.1:1"}, wantErr: true},
		{name: "unknown type", config: Config{Type: "sheets"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateBackend(ctx, tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateBackend() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if res.Cleanup != nil {
				defer res.Cleanup()
			}
			tt.check(t, res.Storage)
			if err := res.Storage.Set(ctx, session.TokenKey, "a.b.c"); err != nil {
				t.Errorf("Set() error = %v", err)
			}
		})
	}
}

func TestBackendTypeIsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%q.IsValid() = false", bt)
		}
	}
	for _, bt := range []BackendType{"", "sheets", "Memory"} {
		if bt.IsValid() {
			t.Errorf("%q.IsValid() = true", bt)
		}
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	want := []string{"memory", "sqlite", "redis"}
	if len(got) != len(want) {
		t.Fatalf("GetBackendTypeStrings() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GetBackendTypeStrings()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
