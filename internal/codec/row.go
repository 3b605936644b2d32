package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
)

// row is one table line keyed by column.
type row map[column]string

const timestampLayout = "2006-01-02 15:04"

var dateLayouts = []string{
	model.DayKeyLayout,
	timestampLayout,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2006/1/2",
	"2006/01/02 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
}

var repeatWords = map[string]model.Repeat{
	"每天": model.RepeatDaily,
	"每周": model.RepeatWeekly,
	"每月": model.RepeatMonthly,
	"每年": model.RepeatYearly,
	"永不": model.RepeatNone,
}

var repeatLabels = map[model.Repeat]string{
	model.RepeatDaily:   "每天",
	model.RepeatWeekly:  "每周",
	model.RepeatMonthly: "每月",
	model.RepeatYearly:  "每年",
	model.RepeatNone:    "永不",
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "是", "true", "yes", "1", "y":
		return true
	}
	return false
}

func parseRepeat(s string) model.Repeat {
	s = strings.TrimSpace(s)
	if r, ok := repeatWords[s]; ok {
		return r
	}
	r, err := model.ParseRepeat(s)
	if err != nil {
		return model.RepeatNone
	}
	return r
}

func isCompletedStatus(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "已完成", "completed", "done":
		return true
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// todo converts a row. ok is false for rows that carry no text.
func (r row) todo(opts ImportOptions) (model.Todo, bool, error) {
	text := strings.TrimSpace(r[colText])
	if text == "" {
		return model.Todo{}, false, nil
	}
	loc := opts.Location
	now := opts.Now.In(loc)
	today := model.DayKey(now)

	dayOf := func(c column) (string, time.Time, error) {
		raw := strings.TrimSpace(r[c])
		if raw == "" {
			return "", time.Time{}, nil
		}
		t, err := parseTime(raw, loc)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("%s: %w", yamlKeys[c], err)
		}
		return model.DayKey(t), t, nil
	}

	target, targetAt, err := dayOf(colTarget)
	if err != nil {
		return model.Todo{}, false, err
	}
	start, _, err := dayOf(colStart)
	if err != nil {
		return model.Todo{}, false, err
	}
	end, _, err := dayOf(colEnd)
	if err != nil {
		return model.Todo{}, false, err
	}
	completedDay, completedAt, err := dayOf(colCompletedAt)
	if err != nil {
		return model.Todo{}, false, err
	}
	_, createdAt, err := dayOf(colCreatedAt)
	if err != nil {
		return model.Todo{}, false, err
	}

	repeat := parseRepeat(r[colRepeat])
	completed := isCompletedStatus(r[colStatus])
	priority := strings.ToLower(r[colPriority])

	longTerm := parseBool(r[colLongTerm]) ||
		containsAny(priority, "long", "长期") ||
		repeat != model.RepeatNone ||
		(start != "" && end != "")
	pinned := parseBool(r[colPinned]) ||
		containsAny(priority, "important", "high", "pin", "top", "重要", "高", "置顶")

	t := model.Todo{
		ID:         strings.TrimSpace(r[colID]),
		Text:       text,
		Completed:  completed,
		IsLongTerm: longTerm,
		IsPinned:   pinned,
		StartDate:  start,
		EndDate:    end,
		IsAllDay:   parseBool(r[colAllDay]),
		IsAllYear:  parseBool(r[colAllYear]),
		IsMonth:    parseBool(r[colMonth]),
		Repeat:     repeat,
		CreatedAt:  model.Millis(now),
	}
	if !createdAt.IsZero() {
		t.CreatedAt = model.Millis(createdAt)
	}

	switch {
	case completed && completedDay != "":
		t.TargetDate = completedDay
	case target != "":
		t.TargetDate = target
	case !completed && repeat == model.RepeatNone && start > today:
		t.TargetDate = start
	default:
		t.TargetDate = today
	}
	if !completed && repeat == model.RepeatNone && start != "" && t.TargetDate < start {
		t.TargetDate = start
	}
	if t.StartDate == "" && repeat != model.RepeatNone {
		t.StartDate = t.TargetDate
	}

	if completed {
		switch {
		case !completedAt.IsZero():
			t.CompletedAt = model.Millis(completedAt)
		case !targetAt.IsZero():
			t.CompletedAt = model.Millis(targetAt)
		default:
			t.CompletedAt = model.Millis(now)
		}
	}
	return t, true, nil
}

// fromTodo renders t for export.
func fromTodo(t model.Todo, lang Language, loc *time.Location) row {
	zh := lang == Chinese
	word := func(en, cn string) string {
		if zh {
			return cn
		}
		return en
	}
	yesNo := func(b bool) string {
		if b {
			return word("yes", "是")
		}
		return word("no", "否")
	}
	stamp := func(ms int64) string {
		if ms == 0 {
			return ""
		}
		return model.FromMillis(ms).In(loc).Format(timestampLayout)
	}

	priority := word("none", "无")
	switch {
	case t.IsLongTerm:
		priority = word("long-term", "长期")
	case t.IsPinned:
		priority = word("important", "重要")
	}
	status := word("open", "未完成")
	if t.Completed {
		status = word("completed", "已完成")
	}
	repeat := string(t.Repeat.Normalize())
	if zh {
		repeat = repeatLabels[t.Repeat.Normalize()]
	}
	created := t.CreatedAt
	if created == 0 {
		created = t.UpdatedAt
	}

	return row{
		colID:          t.ID,
		colList:        word("default", "默认清单"),
		colTarget:      t.TargetDate,
		colText:        t.Text,
		colPriority:    priority,
		colStart:       t.StartDate,
		colEnd:         t.EndDate,
		colRepeat:      repeat,
		colStatus:      status,
		colCompletedAt: stamp(t.CompletedAt),
		colCreatedAt:   stamp(created),
		colPinned:      yesNo(t.IsPinned),
		colAllDay:      yesNo(t.IsAllDay),
		colAllYear:     yesNo(t.IsAllYear),
		colMonth:       yesNo(t.IsMonth),
	}
}
