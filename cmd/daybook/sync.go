package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daybook/internal/config"
	"github.com/sandeepkv93/daybook/internal/update"
)

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive agenda",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return err
			}
			logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "daybook.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return err
			}
			defer logFile.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			s, err := openSession(ctx, logFile)
			if err != nil {
				return err
			}
			defer s.Close()

			runErr := make(chan error, 1)
			go func() { runErr <- s.runtime.Run(ctx) }()

			program := tea.NewProgram(update.NewModel(update.Options{
				Engine:  s.engine,
				Runtime: s.runtime,
				Context: ctx,
			}), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = program.Run()
			cancel()
			if rerr := <-runErr; rerr != nil && !errors.Is(rerr, context.Canceled) {
				s.logger.Error("runtime stopped", "err", rerr)
			}
			if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("daybook failed: %w", err)
			}
			return nil
		},
	}
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push queued changes to the remote store, then fetch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				rep, err := s.runtime.SyncNow(ctx)
				if err != nil {
					return err
				}
				sum, err := s.runtime.FetchNow(ctx)
				if err != nil {
					return err
				}
				if v.GetBool("json") {
					return printJSON(map[string]any{
						"applied": rep.Applied,
						"dropped": rep.Dropped,
						"pending": len(s.engine.Pending()),
						"fetch":   sum,
					})
				}
				fmt.Printf("pushed %d change(s), dropped %d; remote won %d, local won %d, added %d\n",
					rep.Applied, rep.Dropped, sum.RemoteWins, sum.LocalWins, sum.Added)
				return nil
			})
		},
	}
}

func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Merge the remote snapshot into the local list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				sum, err := s.runtime.FetchNow(ctx)
				if err != nil {
					return err
				}
				if v.GetBool("json") {
					return printJSON(sum)
				}
				fmt.Printf("remote won %d, local won %d, added %d\n", sum.RemoteWins, sum.LocalWins, sum.Added)
				return nil
			})
		},
	}
}
