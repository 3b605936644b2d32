package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daybook/internal/db"
	"github.com/sandeepkv93/daybook/internal/server"
	"github.com/sandeepkv93/daybook/internal/storage"
)

var errNoSecret = errors.New("server.jwt-secret (DAYBOOK_SERVER_JWT_SECRET) is required")

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the remote todo store over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Server.JWTSecret == "" {
				return errNoSecret
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			path := cfg.Server.DBPath
			if path == "" {
				path = filepath.Join(cfg.DataDir, "server.db")
			}
			logger := cfg.NewLogger(os.Stderr)

			conn, err := db.Open(path)
			if err != nil {
				return err
			}
			defer conn.Close()
			handler, err := server.New(server.Config{
				Store:    db.NewTodoStore(conn),
				BasePath: basePath,
				Auth:     server.AuthConfig{JWTSecret: cfg.Server.JWTSecret},
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Serving daybook API on http://%s%s (OpenAPI at /openapi.json, docs at /docs)\n", addr, basePath)
			return server.Serve(cmd.Context(), addr, handler, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	cmd.Flags().StringVar(&basePath, "base-path", server.DefaultBasePath, "API base path")
	return cmd
}

func tokenCmd() *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the remote store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Server.JWTSecret == "" {
				return errNoSecret
			}
			if ttl == 0 {
				ttl = cfg.Server.TokenTTL
			}
			token, err := server.IssueToken(cfg.Server.JWTSecret, subject, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "daybook", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default server.token-ttl)")
	return cmd
}

func sqliteOnly(s *session) (*storage.SQLiteKV, error) {
	if s.sqlite == nil {
		return nil, fmt.Errorf("snapshots need the sqlite backend, have %q", s.cfg.Backend)
	}
	return s.sqlite, nil
}

func snapshotsCmd() *cobra.Command {
	var key string
	var limit int
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List saved revisions of the local documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				kv, err := sqliteOnly(s)
				if err != nil {
					return err
				}
				snaps, err := kv.Snapshots(ctx, key, limit)
				if err != nil {
					return err
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Key", "Saved", "Bytes"})
				for _, snap := range snaps {
					tw.AppendRow(table.Row{snap.ID, snap.Key, snap.SavedAt.In(s.loc).Format(time.DateTime), len(snap.Value)})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&key, "key", storage.KeyTodos, "document key")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows")
	return cmd
}

func restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <snapshot-id>",
		Short: "Write a saved revision back as the current document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad snapshot id %q", args[0])
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				kv, err := sqliteOnly(s)
				if err != nil {
					return err
				}
				snap, err := kv.Restore(ctx, id)
				if err != nil {
					return err
				}
				fmt.Printf("restored %s from %s\n", snap.Key, snap.SavedAt.In(s.loc).Format(time.DateTime))
				return nil
			})
		},
	}
}
