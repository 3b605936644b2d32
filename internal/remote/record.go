package remote

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is a todo as stored remotely: snake_case keys and ISO-8601
// timestamps.
type Record struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	Completed   bool    `json:"completed"`
	TargetDate  string  `json:"target_date"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	CompletedAt *string `json:"completed_at"`
	IsLongTerm  bool    `json:"is_long_term"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	IsAllDay    bool    `json:"is_all_day"`
	IsAllYear   bool    `json:"is_all_year"`
	IsMonth     bool    `json:"is_month"`
	Repeat      string  `json:"repeat"`
	IsPinned    bool    `json:"is_pinned"`
}

// Fields is a partial record for updates. A nil value clears the column.
type Fields map[string]any

func FormatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(timestampLayout)
}

func ParseTimestamp(s string) (int64, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, fmt.Errorf("remote: parse timestamp %q: %w", s, err)
	}
	return t.UnixMilli(), nil
}

// FromTodo maps a local todo to its wire record. fallback stamps
// completed_at for completed todos that never recorded one.
func FromTodo(t model.Todo, fallback int64) Record {
	rec := Record{
		ID:         t.ID,
		Text:       t.Text,
		Completed:  t.Completed,
		TargetDate: t.TargetDate,
		CreatedAt:  FormatTimestamp(t.CreatedAt),
		UpdatedAt:  FormatTimestamp(t.UpdatedAt),
		IsLongTerm: t.IsLongTerm,
		StartDate:  optional(t.StartDate),
		EndDate:    optional(t.EndDate),
		IsAllDay:   t.IsAllDay,
		IsAllYear:  t.IsAllYear,
		IsMonth:    t.IsMonth,
		Repeat:     string(t.Repeat.Normalize()),
		IsPinned:   t.IsPinned,
	}
	if t.Completed {
		at := t.CompletedAt
		if at == 0 {
			at = fallback
		}
		rec.CompletedAt = optional(FormatTimestamp(at))
	}
	return rec
}

func (r Record) ToTodo() (model.Todo, error) {
	created, err := ParseTimestamp(r.CreatedAt)
	if err != nil {
		return model.Todo{}, err
	}
	updated, err := ParseTimestamp(r.UpdatedAt)
	if err != nil {
		return model.Todo{}, err
	}
	repeat, err := model.ParseRepeat(r.Repeat)
	if err != nil {
		return model.Todo{}, err
	}
	t := model.Todo{
		ID:         r.ID,
		Text:       r.Text,
		Completed:  r.Completed,
		TargetDate: r.TargetDate,
		IsLongTerm: r.IsLongTerm,
		StartDate:  deref(r.StartDate),
		EndDate:    deref(r.EndDate),
		IsAllDay:   r.IsAllDay,
		IsAllYear:  r.IsAllYear,
		IsMonth:    r.IsMonth,
		Repeat:     repeat,
		IsPinned:   r.IsPinned,
		CreatedAt:  created,
		UpdatedAt:  updated,
	}
	if r.Completed && r.CompletedAt != nil {
		if t.CompletedAt, err = ParseTimestamp(*r.CompletedAt); err != nil {
			return model.Todo{}, err
		}
	}
	return t, nil
}

// FieldsFromPatch maps the set fields of p to columns. updated_at always
// goes out; it falls back to ts when the patch has none.
func FieldsFromPatch(p model.FieldPatch, ts int64) Fields {
	f := Fields{}
	if p.Text != nil {
		f["text"] = *p.Text
	}
	if p.Completed != nil {
		f["completed"] = *p.Completed
	}
	if p.CompletedAt != nil {
		if *p.CompletedAt == 0 {
			f["completed_at"] = nil
		} else {
			f["completed_at"] = FormatTimestamp(*p.CompletedAt)
		}
	}
	if p.TargetDate != nil {
		f["target_date"] = *p.TargetDate
	}
	if p.IsLongTerm != nil {
		f["is_long_term"] = *p.IsLongTerm
	}
	if p.StartDate != nil {
		f["start_date"] = nullable(*p.StartDate)
	}
	if p.EndDate != nil {
		f["end_date"] = nullable(*p.EndDate)
	}
	if p.IsAllDay != nil {
		f["is_all_day"] = *p.IsAllDay
	}
	if p.IsAllYear != nil {
		f["is_all_year"] = *p.IsAllYear
	}
	if p.IsMonth != nil {
		f["is_month"] = *p.IsMonth
	}
	if p.Repeat != nil {
		f["repeat"] = string(p.Repeat.Normalize())
	}
	if p.IsPinned != nil {
		f["is_pinned"] = *p.IsPinned
	}
	updated := ts
	if p.UpdatedAt != nil && *p.UpdatedAt != 0 {
		updated = *p.UpdatedAt
	}
	f["updated_at"] = FormatTimestamp(updated)
	return f
}

// Apply writes f over r. Unknown keys and mistyped values are reported.
func (r Record) Apply(f Fields) (Record, error) {
	for k, v := range f {
		var err error
		switch k {
		case "text":
			err = assign(&r.Text, k, v)
		case "completed":
			err = assign(&r.Completed, k, v)
		case "completed_at":
			err = assignOptional(&r.CompletedAt, k, v)
		case "target_date":
			err = assign(&r.TargetDate, k, v)
		case "is_long_term":
			err = assign(&r.IsLongTerm, k, v)
		case "start_date":
			err = assignOptional(&r.StartDate, k, v)
		case "end_date":
			err = assignOptional(&r.EndDate, k, v)
		case "is_all_day":
			err = assign(&r.IsAllDay, k, v)
		case "is_all_year":
			err = assign(&r.IsAllYear, k, v)
		case "is_month":
			err = assign(&r.IsMonth, k, v)
		case "repeat":
			err = assign(&r.Repeat, k, v)
		case "is_pinned":
			err = assign(&r.IsPinned, k, v)
		case "updated_at":
			err = assign(&r.UpdatedAt, k, v)
		default:
			err = fmt.Errorf("%w: unknown %q", ErrInvalidField, k)
		}
		if err != nil {
			return r, err
		}
	}
	return r, nil
}

func assign[T any](dst *T, key string, v any) error {
	val, ok := v.(T)
	if !ok {
		return fmt.Errorf("%w: %q has type %T", ErrInvalidField, key, v)
	}
	*dst = val
	return nil
}

func assignOptional(dst **string, key string, v any) error {
	if v == nil {
		*dst = nil
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%w: %q has type %T", ErrInvalidField, key, v)
	}
	*dst = optional(s)
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
