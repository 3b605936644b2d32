package model

// FieldPatch names the fields an update changes. A nil field is untouched; a
// pointer to the zero value clears the field.
type FieldPatch struct {
	Text        *string `json:"text,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	CompletedAt *int64  `json:"completedAt,omitempty"`
	TargetDate  *string `json:"targetDate,omitempty"`
	IsLongTerm  *bool   `json:"isLongTerm,omitempty"`
	StartDate   *string `json:"startDate,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
	IsAllDay    *bool   `json:"isAllDay,omitempty"`
	IsAllYear   *bool   `json:"isAllYear,omitempty"`
	IsMonth     *bool   `json:"isMonth,omitempty"`
	Repeat      *Repeat `json:"repeat,omitempty"`
	IsPinned    *bool   `json:"isPinned,omitempty"`
	UpdatedAt   *int64  `json:"updatedAt,omitempty"`
}

func Ptr[T any](v T) *T {
	return &v
}

func (p FieldPatch) IsEmpty() bool {
	return p == FieldPatch{}
}

func (p FieldPatch) Apply(t Todo) Todo {
	set(&t.Text, p.Text)
	set(&t.Completed, p.Completed)
	set(&t.CompletedAt, p.CompletedAt)
	set(&t.TargetDate, p.TargetDate)
	set(&t.IsLongTerm, p.IsLongTerm)
	set(&t.StartDate, p.StartDate)
	set(&t.EndDate, p.EndDate)
	set(&t.IsAllDay, p.IsAllDay)
	set(&t.IsAllYear, p.IsAllYear)
	set(&t.IsMonth, p.IsMonth)
	set(&t.Repeat, p.Repeat)
	set(&t.IsPinned, p.IsPinned)
	set(&t.UpdatedAt, p.UpdatedAt)
	return t
}

// Diff returns the patch that turns before into after. Identity and
// creation time are not patchable.
func Diff(before, after Todo) FieldPatch {
	var p FieldPatch
	p.Text = changed(before.Text, after.Text)
	p.Completed = changed(before.Completed, after.Completed)
	p.CompletedAt = changed(before.CompletedAt, after.CompletedAt)
	p.TargetDate = changed(before.TargetDate, after.TargetDate)
	p.IsLongTerm = changed(before.IsLongTerm, after.IsLongTerm)
	p.StartDate = changed(before.StartDate, after.StartDate)
	p.EndDate = changed(before.EndDate, after.EndDate)
	p.IsAllDay = changed(before.IsAllDay, after.IsAllDay)
	p.IsAllYear = changed(before.IsAllYear, after.IsAllYear)
	p.IsMonth = changed(before.IsMonth, after.IsMonth)
	p.Repeat = changed(before.Repeat.Normalize(), after.Repeat.Normalize())
	p.IsPinned = changed(before.IsPinned, after.IsPinned)
	p.UpdatedAt = changed(before.UpdatedAt, after.UpdatedAt)
	return p
}

// FullPatch sets every patchable field to t's value.
func FullPatch(t Todo) FieldPatch {
	return FieldPatch{
		Text:        Ptr(t.Text),
		Completed:   Ptr(t.Completed),
		CompletedAt: Ptr(t.CompletedAt),
		TargetDate:  Ptr(t.TargetDate),
		IsLongTerm:  Ptr(t.IsLongTerm),
		StartDate:   Ptr(t.StartDate),
		EndDate:     Ptr(t.EndDate),
		IsAllDay:    Ptr(t.IsAllDay),
		IsAllYear:   Ptr(t.IsAllYear),
		IsMonth:     Ptr(t.IsMonth),
		Repeat:      Ptr(t.Repeat.Normalize()),
		IsPinned:    Ptr(t.IsPinned),
		UpdatedAt:   Ptr(t.UpdatedAt),
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func changed[T comparable](a, b T) *T {
	if a == b {
		return nil
	}
	return &b
}
