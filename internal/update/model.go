package update

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/daybook/internal/app"
	"github.com/sandeepkv93/daybook/internal/engine"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/syncer"
)

type Mode string

const (
	ModeBrowse  Mode = "browse"
	ModeAdd     Mode = "add"
	ModePalette Mode = "palette"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevDay  key.Binding
	NextDay  key.Binding
	Today    key.Binding
	Toggle   key.Binding
	Add      key.Binding
	Delete   key.Binding
	Pin      key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Sync     key.Binding
	Palette  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		PrevDay:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "previous day")),
		NextDay:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next day")),
		Today:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle done")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Pin:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin")),
		MoveUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		Sync:     key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "sync now")),
		Palette:  key.NewBinding(key.WithKeys("/", ":"), key.WithHelp("/", "command")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Add, k.Delete, k.PrevDay, k.NextDay, k.Palette, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.MoveUp, k.MoveDown},
		{k.PrevDay, k.NextDay, k.Today},
		{k.Toggle, k.Add, k.Delete, k.Pin},
		{k.Sync, k.Palette, k.Help, k.Quit},
	}
}

type Options struct {
	Engine *engine.Engine
	// Runtime is optional; without it sync commands report local-only.
	Runtime *app.Runtime
	Context context.Context
}

// Model is the agenda screen: one day of todos at a time.
type Model struct {
	Day         string
	FollowToday bool
	Items       []model.Todo
	Cursor      int
	Mode        Mode
	HelpVisible bool
	Status      StatusBar
	Sync        app.Status
	Keys        KeyMap
	Quitting    bool
	LastError   error

	engine  *engine.Engine
	runtime *app.Runtime
	ctx     context.Context

	addInput     textinput.Model
	commandInput textinput.Model
	helpModel    help.Model
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// RuntimeStatusMsg carries a runtime Status published after background work.
type RuntimeStatusMsg struct {
	Status app.Status
}

type SyncDoneMsg struct {
	Report syncer.Report
	Err    error
}

func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		Day:         opts.Engine.Today(),
		FollowToday: true,
		Mode:        ModeBrowse,
		Keys:        DefaultKeyMap(),
		engine:      opts.Engine,
		runtime:     opts.Runtime,
		ctx:         ctx,
	}
	m.initBubbleComponents()
	m.refresh()
	return m
}

func (m *Model) initBubbleComponents() {
	m.addInput = textinput.New()
	m.addInput.Prompt = "add> "
	m.addInput.Placeholder = "what needs doing?"
	m.addInput.CharLimit = 256
	m.addInput.Width = 48

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
}

// refresh reloads the agenda for Day and clamps the cursor.
func (m *Model) refresh() {
	m.Items = m.engine.Agenda(m.Day)
	if m.Cursor >= len(m.Items) {
		m.Cursor = len(m.Items) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.runtime != nil {
		m.Sync = m.runtime.Status()
	} else {
		m.Sync = app.Status{Pending: len(m.engine.Pending())}
	}
}

func (m Model) selected() (model.Todo, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Items) {
		return model.Todo{}, false
	}
	return m.Items[m.Cursor], true
}

// itemAt resolves a 1-based agenda position.
func (m Model) itemAt(n int) (model.Todo, bool) {
	if n < 1 || n > len(m.Items) {
		return model.Todo{}, false
	}
	return m.Items[n-1], true
}
