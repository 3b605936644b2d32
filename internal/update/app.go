package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daybook/internal/app"
	"github.com/sandeepkv93/daybook/internal/commands"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.runtime != nil {
		return waitForRuntimeCmd(m.runtime.Updates())
	}
	return nil
}

func waitForRuntimeCmd(ch <-chan app.Status) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return RuntimeStatusMsg{Status: s}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		switch m.Mode {
		case ModeAdd:
			return m.handleAddKey(typed)
		case ModePalette:
			return m.handlePaletteKey(typed)
		default:
			return m.handleBrowseKey(typed)
		}
	case RuntimeStatusMsg:
		m.Sync = typed.Status
		if today := m.engine.Today(); m.FollowToday && m.Day != today {
			m.Day = today
		}
		m.refresh()
		if m.runtime != nil {
			return m, waitForRuntimeCmd(m.runtime.Updates())
		}
		return m, nil
	case SyncDoneMsg:
		m.refresh()
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		} else {
			m.Status = StatusBar{Text: fmt.Sprintf("synced %d change(s)", typed.Report.Applied)}
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.Quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Help):
		m.HelpVisible = !m.HelpVisible
	case key.Matches(msg, m.Keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
	case key.Matches(msg, m.Keys.Down):
		if m.Cursor < len(m.Items)-1 {
			m.Cursor++
		}
	case key.Matches(msg, m.Keys.PrevDay):
		m.shiftDay(-1)
	case key.Matches(msg, m.Keys.NextDay):
		m.shiftDay(1)
	case key.Matches(msg, m.Keys.Today):
		m.goTo(m.engine.Today())
	case key.Matches(msg, m.Keys.Toggle):
		if t, ok := m.selected(); ok {
			m.report(m.engine.Toggle(m.ctx, t.ID), "toggled "+t.Text)
		}
	case key.Matches(msg, m.Keys.Delete):
		if t, ok := m.selected(); ok {
			m.report(m.engine.Delete(m.ctx, t.ID), "deleted "+t.Text)
		}
	case key.Matches(msg, m.Keys.Pin):
		if t, ok := m.selected(); ok {
			m.report(m.togglePin(t), "")
		}
	case key.Matches(msg, m.Keys.MoveUp):
		m.move(-1)
	case key.Matches(msg, m.Keys.MoveDown):
		m.move(1)
	case key.Matches(msg, m.Keys.Add):
		m.Mode = ModeAdd
		m.addInput.SetValue("")
		m.addInput.Focus()
	case key.Matches(msg, m.Keys.Palette):
		m.Mode = ModePalette
		m.commandInput.SetValue("")
		m.commandInput.Focus()
	case key.Matches(msg, m.Keys.Sync):
		return m, m.syncCmd()
	}
	return m, nil
}

func (m Model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.Mode = ModeBrowse
		m.addInput.Blur()
		return m, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.addInput.Value())
		m.Mode = ModeBrowse
		m.addInput.Blur()
		if text == "" {
			return m, nil
		}
		t, err := m.engine.Add(m.ctx, text, m.Day)
		m.report(err, "added "+t.Text)
		if err == nil && t.TargetDate != m.Day {
			m.goTo(t.TargetDate)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.Mode = ModeBrowse
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case tea.KeyEnter:
		raw := m.commandInput.Value()
		m.Mode = ModeBrowse
		m.commandInput.Blur()
		m.commandInput.SetValue("")
		return m.executePaletteCommand(raw)
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	return m, cmd
}

func (m Model) executePaletteCommand(raw string) (Model, tea.Cmd) {
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var follow tea.Cmd
	item := func(n int) (model.Todo, error) {
		t, ok := m.itemAt(n)
		if !ok {
			return model.Todo{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no item %d on %s", n, m.Day)}
		}
		return t, nil
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			day := a.Day
			if day == "" {
				day = m.Day
			}
			t, err := m.engine.Add(m.ctx, a.Text, day)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added %q on %s", t.Text, t.TargetDate)}, nil
		},
		Done: func(a commands.ItemArgs) (commands.Result, error) {
			t, err := item(a.Index)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.engine.Toggle(m.ctx, t.ID); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "toggled " + t.Text}, nil
		},
		Edit: func(a commands.EditArgs) (commands.Result, error) {
			t, err := item(a.Index)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.engine.Update(m.ctx, t.ID, a.Text); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "renamed to " + a.Text}, nil
		},
		Delete: func(a commands.ItemArgs) (commands.Result, error) {
			t, err := item(a.Index)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.engine.Delete(m.ctx, t.ID); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "deleted " + t.Text}, nil
		},
		Goto: func(a commands.GotoArgs) (commands.Result, error) {
			day, err := a.Resolve(m.Day, m.engine.Today())
			if err != nil {
				return commands.Result{}, err
			}
			m.goTo(day)
			return commands.Result{Message: "showing " + day}, nil
		},
		Repeat: func(a commands.RepeatArgs) (commands.Result, error) {
			t, err := item(a.Index)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.engine.UpdateFields(m.ctx, t.ID, model.FieldPatch{Repeat: model.Ptr(a.Rule)}); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("%s repeats %s", t.Text, a.Rule)}, nil
		},
		Pin: func(a commands.ItemArgs) (commands.Result, error) {
			t, err := item(a.Index)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.togglePin(t); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "pin toggled on " + t.Text}, nil
		},
		Sync: func() (commands.Result, error) {
			follow = m.syncCmd()
			return commands.Result{Message: "syncing"}, nil
		},
		Dedupe: func() (commands.Result, error) {
			removed := m.engine.Deduplicate(m.ctx)
			return commands.Result{Message: fmt.Sprintf("removed %d duplicate(s)", len(removed))}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	} else {
		m.Status = StatusBar{Text: res.Message}
	}
	m.refresh()
	return m, follow
}

func (m *Model) report(err error, ok string) {
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	} else if ok != "" {
		m.Status = StatusBar{Text: ok}
	}
	m.refresh()
}

func (m *Model) togglePin(t model.Todo) error {
	return m.engine.UpdateFields(m.ctx, t.ID, model.FieldPatch{IsPinned: model.Ptr(!t.IsPinned)})
}

func (m *Model) shiftDay(n int) {
	day, err := model.AddDays(m.Day, n)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return
	}
	m.goTo(day)
}

func (m *Model) goTo(day string) {
	m.Day = day
	m.FollowToday = day == m.engine.Today()
	m.Cursor = 0
	m.refresh()
}

// move swaps the selected item with its neighbour and persists the new
// order of the day.
func (m *Model) move(delta int) {
	j := m.Cursor + delta
	if j < 0 || j >= len(m.Items) {
		return
	}
	ids := make([]string, len(m.Items))
	for i, t := range m.Items {
		ids[i] = t.ID
	}
	ids[m.Cursor], ids[j] = ids[j], ids[m.Cursor]
	m.engine.Reorder(m.ctx, ids)
	m.Cursor = j
	m.refresh()
}

func (m Model) syncCmd() tea.Cmd {
	rt, ctx := m.runtime, m.ctx
	return func() tea.Msg {
		if rt == nil {
			return SyncDoneMsg{Err: app.ErrLocalOnly}
		}
		rep, err := rt.SyncNow(ctx)
		if err == nil {
			_, err = rt.FetchNow(ctx)
		}
		return SyncDoneMsg{Report: rep, Err: err}
	}
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	items := make([]views.AgendaItemData, 0, len(m.Items))
	done := 0
	for _, t := range m.Items {
		if t.Completed {
			done++
		}
		items = append(items, views.AgendaItemData{
			Text:      t.Text,
			Completed: t.Completed,
			Pinned:    t.IsPinned,
			Span:      model.Describe(t.Schedule()),
		})
	}
	progress := ""
	if len(items) > 0 {
		progress = fmt.Sprintf("%d/%d done", done, len(items))
	}

	weekday := ""
	if d, err := model.ParseDayKey(m.Day, time.UTC); err == nil {
		weekday = d.Weekday().String()
	}
	left := views.RenderAgendaPanel(views.AgendaPanelData{
		Day:      m.Day,
		Weekday:  weekday,
		IsToday:  m.Day == m.engine.Today(),
		Items:    items,
		Cursor:   m.Cursor,
		AddView:  m.addInput.View(),
		Adding:   m.Mode == ModeAdd,
		Progress: progress,
	})

	right := m.renderHelpIfVisible()
	if m.Mode == ModePalette {
		right = strings.TrimSpace(views.RenderCommandPalette(true, m.commandInput.View()) + "\n\n" + right)
	}

	statusLine := m.Status.Text
	if statusLine == "" {
		statusLine = m.syncStatusLine()
	}
	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("daybook | %s | %s", m.Day, m.syncStatusLine()),
		LeftPane:   left,
		RightPane:  right,
		StatusLine: statusLine,
		IsError:    m.Status.IsError,
		Footer:     m.helpModel.ShortHelpView(m.Keys.ShortHelp()),
	})
}

func (m Model) syncStatusLine() string {
	last := ""
	if !m.Sync.LastSync.IsZero() {
		last = m.Sync.LastSync.Format("15:04")
	}
	return views.RenderSyncStatus(views.SyncStatusData{
		Remote:   m.Sync.Remote,
		Online:   m.Sync.Online,
		Pending:  m.Sync.Pending,
		LastSync: last,
	})
}
