package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daybook/internal/codec"
	"github.com/sandeepkv93/daybook/internal/model"
)

func addCmd() *cobra.Command {
	var day string
	var repeat string
	var start, end string
	var pinned bool
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				rule, err := model.ParseRepeat(repeat)
				if err != nil {
					return err
				}
				draft := model.Todo{
					Text:       strings.Join(args, " "),
					TargetDate: day,
					Repeat:     rule,
					IsPinned:   pinned,
				}
				if draft.TargetDate == "" {
					draft.TargetDate = s.engine.Today()
				}
				if start != "" || end != "" {
					draft.IsLongTerm = true
					draft.StartDate, draft.EndDate = start, end
				}
				t, err := s.engine.AddTodo(ctx, draft)
				if err != nil {
					return err
				}
				if v.GetBool("json") {
					return printJSON(t)
				}
				fmt.Printf("added %s on %s (%s)\n", t.Text, t.TargetDate, t.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "target day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&repeat, "repeat", "none", "none, daily, weekly, monthly or yearly")
	cmd.Flags().StringVar(&start, "start", "", "long-term range start")
	cmd.Flags().StringVar(&end, "end", "", "long-term range end")
	cmd.Flags().BoolVar(&pinned, "pin", false, "pin the todo")
	return cmd
}

func listCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list [day]",
		Short: "List the agenda for a day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				day := s.engine.Today()
				if len(args) == 1 {
					day = args[0]
				}
				if !model.IsDayKey(day) {
					return fmt.Errorf("%w: %q", model.ErrInvalidDateKey, day)
				}
				items := s.engine.Agenda(day)
				if all {
					items = s.engine.Todos()
				}
				if v.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"#", "Done", "Text", "Day", "Schedule", "ID"})
				for i, t := range items {
					done := ""
					if t.Completed {
						done = "x"
					}
					text := t.Text
					if t.IsPinned {
						text += " *"
					}
					tw.AppendRow(table.Row{i + 1, done, text, t.TargetDate, model.Describe(t.Schedule()), t.ID})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every todo instead of one day")
	return cmd
}

// resolveItem accepts a 1-based agenda position for day or a todo id.
func resolveItem(s *session, day, ref string) (model.Todo, error) {
	if n, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		items := s.engine.Agenda(day)
		if n < 1 || n > len(items) {
			return model.Todo{}, fmt.Errorf("no item %d on %s", n, day)
		}
		return items[n-1], nil
	}
	t, ok := s.engine.Get(ref)
	if !ok {
		return model.Todo{}, fmt.Errorf("todo %s not found", ref)
	}
	return t, nil
}

func itemCmd(use, short string, apply func(ctx context.Context, s *session, t model.Todo) (string, error)) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   use + " <n|id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				if day == "" {
					day = s.engine.Today()
				}
				t, err := resolveItem(s, day, args[0])
				if err != nil {
					return err
				}
				msg, err := apply(ctx, s, t)
				if err != nil {
					return err
				}
				fmt.Println(msg)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "day the item number refers to (default today)")
	return cmd
}

func doneCmd() *cobra.Command {
	return itemCmd("done", "Toggle completion", func(ctx context.Context, s *session, t model.Todo) (string, error) {
		if err := s.engine.Toggle(ctx, t.ID); err != nil {
			return "", err
		}
		return "toggled " + t.Text, nil
	})
}

func rmCmd() *cobra.Command {
	cmd := itemCmd("rm", "Delete a todo", func(ctx context.Context, s *session, t model.Todo) (string, error) {
		if err := s.engine.Delete(ctx, t.ID); err != nil {
			return "", err
		}
		return "deleted " + t.Text, nil
	})
	cmd.Aliases = []string{"delete", "del"}
	return cmd
}

func dedupeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dedupe",
		Short: "Remove todos with the same text on the same day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				removed := s.engine.Deduplicate(ctx)
				if v.GetBool("json") {
					return printJSON(removed)
				}
				fmt.Printf("removed %d duplicate(s)\n", len(removed))
				return nil
			})
		},
	}
}

func formatFor(path, flag string) (codec.Format, error) {
	if flag != "" {
		return codec.Format(strings.ToLower(flag)), nil
	}
	return codec.FormatFromPath(path)
}

func importCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import todos from CSV or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				f, err := formatFor(args[0], format)
				if err != nil {
					return err
				}
				in, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer in.Close()
				items, err := codec.Decode(in, f, codec.ImportOptions{Now: time.Now(), Location: s.loc})
				if err != nil {
					return err
				}
				sum := s.engine.Import(ctx, items)
				if v.GetBool("json") {
					return printJSON(sum)
				}
				fmt.Printf("imported %d row(s): %d new, %d updated, %d skipped, %d moved to today\n",
					len(items), sum.Inserted, sum.Updated, sum.Skipped, sum.Migrated)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "csv or yaml (default from extension)")
	return cmd
}

func exportCmd() *cobra.Command {
	var format, lang string
	cmd := &cobra.Command{
		Use:   "export <file|->",
		Short: "Export every todo to CSV or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				path := args[0]
				if path == "-" && format == "" {
					format = string(codec.FormatCSV)
				}
				f, err := formatFor(path, format)
				if err != nil {
					return err
				}
				opts := codec.ExportOptions{Language: codec.Language(lang), Location: s.loc}
				if path == "-" {
					return codec.Encode(os.Stdout, f, s.engine.Todos(), opts)
				}
				out, err := os.Create(path)
				if err != nil {
					return err
				}
				if err := codec.Encode(out, f, s.engine.Todos(), opts); err != nil {
					out.Close()
					return err
				}
				return out.Close()
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "csv or yaml (default from extension)")
	cmd.Flags().StringVar(&lang, "lang", string(codec.English), "header language: en or zh")
	return cmd
}
