package model

import (
	"errors"
	"testing"
)

func validTodo() Todo {
	return Todo{
		ID:         "t1",
		Text:       "Pay rent",
		TargetDate: "2024-05-01",
		Repeat:     RepeatNone,
		CreatedAt:  1,
		UpdatedAt:  1,
	}
}

func TestTodoValidate(t *testing.T) {
	if err := validTodo().Validate(); err != nil {
		t.Fatalf("expected valid todo, got %v", err)
	}

	blank := validTodo()
	blank.Text = "   "
	if err := blank.Validate(); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}

	badDate := validTodo()
	badDate.TargetDate = "05/01/2024"
	if err := badDate.Validate(); !errors.Is(err, ErrInvalidDateKey) {
		t.Fatalf("expected ErrInvalidDateKey, got %v", err)
	}

	inverted := validTodo()
	inverted.StartDate, inverted.EndDate = "2024-05-10", "2024-05-01"
	if err := inverted.Validate(); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}

	repeat := validTodo()
	repeat.Repeat = "hourly"
	if err := repeat.Validate(); !errors.Is(err, ErrInvalidRepeat) {
		t.Fatalf("expected ErrInvalidRepeat, got %v", err)
	}

	open := validTodo()
	open.CompletedAt = 5
	if err := open.Validate(); err == nil {
		t.Fatalf("expected completedAt on open todo to fail")
	}
}

func TestScheduleVariants(t *testing.T) {
	simple := validTodo()
	if _, ok := simple.Schedule().(Simple); !ok {
		t.Fatalf("expected simple schedule, got %#v", simple.Schedule())
	}

	monthly := validTodo()
	monthly.Repeat = RepeatMonthly
	rec, ok := monthly.Schedule().(Recurring)
	if !ok || rec.Unit != RepeatMonthly || rec.Anchor != "2024-05-01" {
		t.Fatalf("unexpected recurring schedule: %#v", monthly.Schedule())
	}

	both := validTodo()
	both.IsLongTerm, both.IsAllYear, both.IsMonth = true, true, true
	both.StartDate, both.EndDate = "2024-01-01", "2024-12-31"
	span, ok := both.Schedule().(LongTerm)
	if !ok || span.Kind != SpanYear {
		t.Fatalf("expected year span, got %#v", both.Schedule())
	}

	back := validTodo().WithSchedule(LongTerm{Kind: SpanMonth, Start: "2024-05-01", End: "2024-05-31", Repeat: RepeatMonthly})
	if !back.IsLongTerm || !back.IsMonth || back.IsAllYear || back.Repeat != RepeatMonthly || back.EndDate != "2024-05-31" {
		t.Fatalf("unexpected flat fields: %#v", back)
	}
	cleared := back.WithSchedule(Simple{})
	if cleared.IsLongTerm || cleared.IsMonth || cleared.StartDate != "" || cleared.Repeat != RepeatNone {
		t.Fatalf("expected simple flat fields, got %#v", cleared)
	}
}

func TestOnDayCoversLongTermRange(t *testing.T) {
	td := validTodo()
	td.IsLongTerm = true
	td.StartDate, td.EndDate = "2024-05-01", "2024-05-31"
	if !td.OnDay("2024-05-15") || td.OnDay("2024-06-01") {
		t.Fatalf("unexpected range membership")
	}
	short := validTodo()
	if short.OnDay("2024-05-02") {
		t.Fatalf("simple todo should only show on target date")
	}
}

func TestDescribeSchedule(t *testing.T) {
	cases := []struct {
		todo Todo
		want string
	}{
		{Todo{TargetDate: "2024-04-15"}, ""},
		{Todo{TargetDate: "2024-04-15", Repeat: RepeatWeekly}, "weekly"},
		{Todo{TargetDate: "2024-04-15", IsLongTerm: true, StartDate: "2024-04-10", EndDate: "2024-04-20"}, "2024-04-10..2024-04-20"},
		{Todo{TargetDate: "2024-04-15", IsLongTerm: true, IsMonth: true, Repeat: RepeatMonthly}, "this month, monthly"},
	}
	for _, tc := range cases {
		if got := Describe(tc.todo.Schedule()); got != tc.want {
			t.Fatalf("Describe(%+v) = %q, want %q", tc.todo, got, tc.want)
		}
	}
}
