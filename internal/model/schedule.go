package model

import "strings"

type SpanKind string

const (
	SpanRange SpanKind = "range"
	SpanMonth SpanKind = "month"
	SpanYear  SpanKind = "year"
)

// Schedule is the variant view of a todo's date fields. Exactly one of
// Simple, Recurring or LongTerm describes any todo.
type Schedule interface {
	schedule()
}

type Simple struct{}

type Recurring struct {
	Unit   Repeat
	Anchor string
}

type LongTerm struct {
	Kind   SpanKind
	Start  string
	End    string
	Repeat Repeat
}

func (Simple) schedule()    {}
func (Recurring) schedule() {}
func (LongTerm) schedule()  {}

// Schedule derives the variant from the flat fields. A todo flagged as both
// all-year and month resolves to a year span.
func (t Todo) Schedule() Schedule {
	repeat := t.Repeat.Normalize()
	if t.IsLongTerm {
		kind := SpanRange
		switch {
		case t.IsAllYear:
			kind = SpanYear
		case t.IsMonth:
			kind = SpanMonth
		}
		return LongTerm{Kind: kind, Start: t.StartDate, End: t.EndDate, Repeat: repeat}
	}
	if repeat != RepeatNone {
		return Recurring{Unit: repeat, Anchor: t.CycleAnchor()}
	}
	return Simple{}
}

// WithSchedule writes s back into the flat fields.
func (t Todo) WithSchedule(s Schedule) Todo {
	t.IsLongTerm, t.IsAllYear, t.IsMonth = false, false, false
	switch v := s.(type) {
	case LongTerm:
		t.IsLongTerm = true
		t.IsAllYear = v.Kind == SpanYear
		t.IsMonth = v.Kind == SpanMonth
		t.StartDate, t.EndDate = v.Start, v.End
		t.Repeat = v.Repeat.Normalize()
	case Recurring:
		t.Repeat = v.Unit.Normalize()
		if v.Anchor != "" && v.Anchor != t.TargetDate {
			t.StartDate = v.Anchor
		}
	default:
		t.Repeat = RepeatNone
		t.StartDate, t.EndDate = "", ""
	}
	return t
}

// Describe renders a short label for s; plain todos have none.
func Describe(s Schedule) string {
	switch v := s.(type) {
	case LongTerm:
		var span string
		switch v.Kind {
		case SpanYear:
			span = "all year"
		case SpanMonth:
			span = "this month"
		default:
			span = strings.Trim(v.Start+".."+v.End, ".")
		}
		if v.Repeat != RepeatNone {
			span += ", " + string(v.Repeat)
		}
		return span
	case Recurring:
		return string(v.Unit)
	default:
		return ""
	}
}
