package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyText    = errors.New("model: todo text is required")
	ErrInvalidRange = errors.New("model: start date after end date")
)

// Todo is the persisted shape shared by the local store, the sync queue and
// import/export. Timestamps are epoch milliseconds; zero means unset.
type Todo struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	CompletedAt int64  `json:"completedAt,omitempty"`
	TargetDate  string `json:"targetDate"`
	IsLongTerm  bool   `json:"isLongTerm,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	IsAllDay    bool   `json:"isAllDay,omitempty"`
	IsAllYear   bool   `json:"isAllYear,omitempty"`
	IsMonth     bool   `json:"isMonth,omitempty"`
	Repeat      Repeat `json:"repeat,omitempty"`
	IsPinned    bool   `json:"isPinned,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

func NewID() string {
	return uuid.NewString()
}

func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// DedupKey identifies todos that represent the same entry on the same day.
func (t Todo) DedupKey() string {
	return t.Text + "\x00" + t.TargetDate
}

func (t Todo) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: todo id is required")
	}
	if strings.TrimSpace(t.Text) == "" {
		return ErrEmptyText
	}
	if !IsDayKey(t.TargetDate) {
		return fmt.Errorf("%w: target %q", ErrInvalidDateKey, t.TargetDate)
	}
	if t.StartDate != "" && !IsDayKey(t.StartDate) {
		return fmt.Errorf("%w: start %q", ErrInvalidDateKey, t.StartDate)
	}
	if t.EndDate != "" && !IsDayKey(t.EndDate) {
		return fmt.Errorf("%w: end %q", ErrInvalidDateKey, t.EndDate)
	}
	if t.StartDate != "" && t.EndDate != "" && t.StartDate > t.EndDate {
		return fmt.Errorf("%w: %s > %s", ErrInvalidRange, t.StartDate, t.EndDate)
	}
	if !t.Repeat.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRepeat, t.Repeat)
	}
	if !t.Completed && t.CompletedAt != 0 {
		return errors.New("model: completedAt must be unset on an open todo")
	}
	return nil
}

// CycleAnchor is the date a monthly or yearly todo advances from.
func (t Todo) CycleAnchor() string {
	if t.StartDate != "" {
		return t.StartDate
	}
	return t.TargetDate
}

// OnDay reports whether t belongs on the agenda for day: its target date, or
// any day inside a long-term range.
func (t Todo) OnDay(day string) bool {
	if t.TargetDate == day {
		return true
	}
	if !t.IsLongTerm || t.StartDate == "" {
		return false
	}
	end := t.EndDate
	if end == "" {
		end = t.StartDate
	}
	return t.StartDate <= day && day <= end
}
