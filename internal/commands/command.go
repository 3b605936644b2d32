package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/daybook/internal/model"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeDone   Type = "done"
	TypeEdit   Type = "edit"
	TypeDelete Type = "del"
	TypeGoto   Type = "goto"
	TypeRepeat Type = "repeat"
	TypePin    Type = "pin"
	TypeSync   Type = "sync"
	TypeDedupe Type = "dedupe"
)

// aliases maps alternative command words to their canonical type.
var aliases = map[string]Type{
	"rm":     TypeDelete,
	"delete": TypeDelete,
	"toggle": TypeDone,
	"go":     TypeGoto,
}

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// AddArgs creates a todo. An empty Day means the day being viewed.
type AddArgs struct {
	Text string
	Day  string
}

// ItemArgs points at an agenda row, counted from 1.
type ItemArgs struct {
	Index int
}

type EditArgs struct {
	Index int
	Text  string
}

type RepeatArgs struct {
	Index int
	Rule  model.Repeat
}

// GotoArgs is exactly one of an absolute Day, Today, or a relative Offset.
type GotoArgs struct {
	Day    string
	Today  bool
	Offset int
}

// Resolve returns the day GotoArgs designates relative to current.
func (g GotoArgs) Resolve(current, today string) (string, error) {
	switch {
	case g.Today:
		return today, nil
	case g.Day != "":
		return g.Day, nil
	default:
		return model.AddDays(current, g.Offset)
	}
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Item   *ItemArgs
	Edit   *EditArgs
	Goto   *GotoArgs
	Repeat *RepeatArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := Type(strings.ToLower(parts[0]))
	if t, ok := aliases[string(head)]; ok {
		head = t
	}
	args := parts[1:]

	switch head {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone, TypeDelete, TypePin:
		idx, err := parseIndex(head, args)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: head, Raw: input, Item: &ItemArgs{Index: idx}}, nil
	case TypeEdit:
		return parseEdit(input, args)
	case TypeGoto:
		return parseGoto(input, args)
	case TypeRepeat:
		return parseRepeat(input, args)
	case TypeSync, TypeDedupe:
		if len(args) > 0 {
			return Command{}, invalid("%s takes no arguments", head)
		}
		return Command{Type: head, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseIndex(head Type, args []string) (int, error) {
	if len(args) == 0 {
		return 0, invalid("%s requires an item number", head)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
	if err != nil || n < 1 {
		return 0, invalid("%s: %q is not an item number", head, args[0])
	}
	return n, nil
}

func parseAdd(raw string, args []string) (Command, error) {
	day := ""
	if n := len(args); n > 1 && model.IsDayKey(args[n-1]) {
		day = args[n-1]
		args = args[:n-1]
	}
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return Command{}, invalid("add requires text")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Text: text, Day: day}}, nil
}

func parseEdit(raw string, args []string) (Command, error) {
	idx, err := parseIndex(TypeEdit, args)
	if err != nil {
		return Command{}, err
	}
	text := strings.TrimSpace(strings.Join(args[1:], " "))
	if text == "" {
		return Command{}, invalid("edit requires new text")
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: &EditArgs{Index: idx, Text: text}}, nil
}

func parseGoto(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("goto requires a date, today, +N or -N")
	}
	target := strings.ToLower(args[0])
	var g GotoArgs
	switch {
	case target == "today":
		g.Today = true
	case model.IsDayKey(target):
		g.Day = target
	case strings.HasPrefix(target, "+") || strings.HasPrefix(target, "-"):
		n, err := strconv.Atoi(target)
		if err != nil {
			return Command{}, invalid("goto: bad offset %q", args[0])
		}
		g.Offset = n
	default:
		return Command{}, invalid("goto: unrecognised target %q", args[0])
	}
	return Command{Type: TypeGoto, Raw: raw, Goto: &g}, nil
}

func parseRepeat(raw string, args []string) (Command, error) {
	idx, err := parseIndex(TypeRepeat, args)
	if err != nil {
		return Command{}, err
	}
	if len(args) != 2 {
		return Command{}, invalid("repeat requires an item number and a rule")
	}
	rule, err := model.ParseRepeat(args[1])
	if err != nil {
		return Command{}, invalid("repeat: %v", err)
	}
	return Command{Type: TypeRepeat, Raw: raw, Repeat: &RepeatArgs{Index: idx, Rule: rule}}, nil
}
