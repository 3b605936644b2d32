package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add    func(AddArgs) (Result, error)
	Done   func(ItemArgs) (Result, error)
	Edit   func(EditArgs) (Result, error)
	Delete func(ItemArgs) (Result, error)
	Goto   func(GotoArgs) (Result, error)
	Repeat func(RepeatArgs) (Result, error)
	Pin    func(ItemArgs) (Result, error)
	Sync   func() (Result, error)
	Dedupe func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		return call(cmd.Type, handlers.Add, cmd.Add)
	case TypeDone:
		return call(cmd.Type, handlers.Done, cmd.Item)
	case TypeEdit:
		return call(cmd.Type, handlers.Edit, cmd.Edit)
	case TypeDelete:
		return call(cmd.Type, handlers.Delete, cmd.Item)
	case TypeGoto:
		return call(cmd.Type, handlers.Goto, cmd.Goto)
	case TypeRepeat:
		return call(cmd.Type, handlers.Repeat, cmd.Repeat)
	case TypePin:
		return call(cmd.Type, handlers.Pin, cmd.Item)
	case TypeSync:
		return callNoArgs(cmd.Type, handlers.Sync)
	case TypeDedupe:
		return callNoArgs(cmd.Type, handlers.Dedupe)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func call[A any](t Type, h func(A) (Result, error), args *A) (Result, error) {
	if h == nil {
		return Result{}, missing(t)
	}
	if args == nil {
		return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s has no arguments", t)}
	}
	return h(*args)
}

func callNoArgs(t Type, h func() (Result, error)) (Result, error) {
	if h == nil {
		return Result{}, missing(t)
	}
	return h()
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
