package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daybook/internal/app"
	"github.com/sandeepkv93/daybook/internal/config"
	"github.com/sandeepkv93/daybook/internal/engine"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/remote"
	"github.com/sandeepkv93/daybook/internal/storage"
)

var v = config.NewViper()

var rootCmd = &cobra.Command{
	Use:   "daybook",
	Short: "Local-first daily todo list",
	Long: `daybook keeps a day-by-day todo list on this device and mirrors it to a
remote store when one is configured.

Unfinished items roll over to today at midnight. Daily and weekly items
reopen one interval after they are completed. Changes made offline are
queued and pushed when the remote store is reachable again.

Configuration is read from a TOML file (--config, default under the user
config directory) and DAYBOOK_* environment variables, e.g.
DAYBOOK_REMOTE_URL=http://127.0.0.1:8080/v1 and DAYBOOK_REMOTE_TOKEN.`,
	SilenceUsage: true,
}

func main() {
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default "+config.DefaultPath()+")")
	flags.String("data-dir", "", "directory for local state")
	flags.String("backend", "", "local storage backend: sqlite, file or memory")
	flags.String("timezone", "", "IANA zone used for day boundaries")
	flags.String("remote-url", "", "remote store base URL")
	flags.String("remote-token", "", "bearer token for the remote store")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-format", "", "text or json")
	flags.Bool("json", false, "output JSON")
	bind := map[string]string{
		"config":       "config",
		"data-dir":     "data-dir",
		"backend":      "backend",
		"timezone":     "timezone",
		"remote-url":   "remote.url",
		"remote-token": "remote.token",
		"log-level":    "log.level",
		"log-format":   "log.format",
		"json":         "json",
	}
	for flag, key := range bind {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
}

func registerCommands() {
	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(doneCmd())
	rootCmd.AddCommand(rmCmd())
	rootCmd.AddCommand(dedupeCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(snapshotsCmd())
	rootCmd.AddCommand(restoreCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tokenCmd())
}

// session is the local state one command works against.
type session struct {
	cfg     config.RuntimeConfig
	loc     *time.Location
	logger  *slog.Logger
	kv      storage.KV
	sqlite  *storage.SQLiteKV
	engine  *engine.Engine
	runtime *app.Runtime
	closers []io.Closer
}

func loadConfig() (config.RuntimeConfig, *time.Location, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return config.RuntimeConfig{}, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return config.RuntimeConfig{}, nil, err
	}
	return cfg, loc, nil
}

// openSession loads config, opens the configured backend and loads the
// engine. Log output goes to logOut.
func openSession(ctx context.Context, logOut io.Writer) (*session, error) {
	cfg, loc, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, loc: loc, logger: cfg.NewLogger(logOut)}

	switch cfg.Backend {
	case "sqlite":
		kv, err := storage.OpenSQLite(cfg.SQLitePath())
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.SQLitePath(), err)
		}
		s.kv, s.sqlite = kv, kv
		s.closers = append(s.closers, kv)
	case "file":
		kv, err := storage.NewFileKV(filepath.Join(cfg.DataDir, "store"))
		if err != nil {
			return nil, err
		}
		s.kv = kv
	default:
		s.kv = storage.NewMemoryKV()
	}

	s.engine = engine.New(engine.Options{
		Store:     s.kv,
		Clock:     time.Now,
		Location:  loc,
		NewID:     model.NewID,
		Logger:    s.logger,
		MaxPasses: cfg.MaxPasses,
	})
	if err := s.engine.Load(ctx); err != nil {
		s.Close()
		return nil, err
	}

	var store remote.Store
	if cfg.RemoteEnabled() {
		store = remote.NewClient(cfg.Remote.URL, cfg.Remote.Token)
	}
	s.runtime = app.New(app.Options{
		Engine:          s.engine,
		Remote:          store,
		Clock:           time.Now,
		Location:        loc,
		FetchInterval:   cfg.Remote.FetchInterval,
		ProbeInterval:   cfg.Remote.ProbeInterval,
		SchedulerBuffer: cfg.SchedulerBuffer,
		Logger:          s.logger,
	})
	return s, nil
}

func (s *session) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

func printJSON(out any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
