package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"financas/internal/amqp"
	"financas/internal/config"
	"financas/internal/storage"
)

func quietFactory() *DefaultFactory {
	return NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil))).(*DefaultFactory)
}

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		check   func(*testing.T, storage.Store)
	}{
		{
			name:   "csv",
			config: Config{Type: CSVBackend, DataDirectory: filepath.Join(dir, "csv")},
			check: func(t *testing.T, s storage.Store) {
				if _, ok := s.(*storage.CSVStore); !ok {
					t.Errorf("store = %T, want *storage.CSVStore", s)
				}
			},
		},
		{
			name:   "sqlite",
			config: Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "financas.db")},
			check: func(t *testing.T, s storage.Store) {
				if _, ok := s.(*storage.SQLiteStore); !ok {
					t.Errorf("store = %T, want *storage.SQLiteStore", s)
				}
			},
		},
		{
			name:    "unknown type",
			config:  Config{Type: "memory"},
			wantErr: true,
		},
		{
			name:    "csv without directory",
			config:  Config{Type: CSVBackend},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := quietFactory().CreateBackend(context.Background(), tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			defer res.Cleanup()
			if res.Events != nil {
				t.Error("events must be nil without AMQP")
			}
			tt.check(t, res.Store)
		})
	}
}

func TestCreateBackend_AMQPFailureIsNotFatal(t *testing.T) {
	f := quietFactory()
	f.dial = func(string, string, string) (*amqp.Client, error) {
		return nil, errors.New("connection refused")
	}
	res, err := f.CreateBackend(context.Background(), Config{
		Type:          CSVBackend,
		DataDirectory: t.TempDir(),
		AMQPURL:       "amqp://localhost:5672/",
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()
	if res.Events != nil {
		t.Error("events must stay nil when AMQP is unreachable")
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", DataDir: "d"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" || cfg.DataDirectory != "d" {
		t.Errorf("cfg = %+v", cfg)
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
