package commands

import (
	"errors"
	"testing"

	"github.com/sandeepkv93/daybook/internal/model"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add pay rent 2024-05-01", TypeAdd},
		{"done 2", TypeDone},
		{"toggle #3", TypeDone},
		{"edit 1 call the bank", TypeEdit},
		{"rm 4", TypeDelete},
		{"goto +3", TypeGoto},
		{"repeat 1 weekly", TypeRepeat},
		{"pin 2", TypePin},
		{"/sync", TypeSync},
		{"dedupe", TypeDedupe},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseAddSplitsTrailingDate(t *testing.T) {
	cmd, err := Parse("add pay rent 2024-05-01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.Add.Text != "pay rent" || cmd.Add.Day != "2024-05-01" {
		t.Fatalf("unexpected add args %+v", cmd.Add)
	}

	cmd, err = Parse("add 2024-05-01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.Add.Text != "2024-05-01" || cmd.Add.Day != "" {
		t.Fatalf("a lone date is the text, got %+v", cmd.Add)
	}
}

func TestGotoResolve(t *testing.T) {
	cases := map[string]string{
		"goto today":      "2024-04-15",
		"goto +2":         "2024-04-12",
		"goto -10":        "2024-03-31",
		"goto 2024-12-25": "2024-12-25",
	}
	for in, want := range cases {
		cmd, err := Parse(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		got, err := cmd.Goto.Resolve("2024-04-10", "2024-04-15")
		if err != nil || got != want {
			t.Fatalf("%q resolved to %q (%v), want %q", in, got, err, want)
		}
	}
}

func TestParseRejectsBadArguments(t *testing.T) {
	for _, in := range []string{"done", "done zero", "done 0", "edit 2", "repeat 1 hourly", "goto someday", "sync now", "add"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("%q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/repeat 2 monthly")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Repeat: func(a RepeatArgs) (Result, error) {
			called = true
			if a.Index != 2 || a.Rule != model.RepeatMonthly {
				t.Fatalf("unexpected args: %+v", a)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("sync")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
