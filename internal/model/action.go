package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

type ActionType string

const (
	ActionInsert ActionType = "INSERT"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
)

var ErrInvalidAction = errors.New("model: invalid sync action")

// SyncAction is one pending mutation for the remote store. Todo is set for
// inserts, Patch for updates; deletes carry only the id.
type SyncAction struct {
	ID        string
	Type      ActionType
	Todo      Todo
	Patch     FieldPatch
	Timestamp int64
}

func InsertAction(t Todo, now int64) SyncAction {
	return SyncAction{ID: t.ID, Type: ActionInsert, Todo: t, Timestamp: now}
}

func UpdateAction(id string, p FieldPatch, now int64) SyncAction {
	return SyncAction{ID: id, Type: ActionUpdate, Patch: p, Timestamp: now}
}

func DeleteAction(id string, now int64) SyncAction {
	return SyncAction{ID: id, Type: ActionDelete, Timestamp: now}
}

type wireAction struct {
	ID        string          `json:"id"`
	Type      ActionType      `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func (a SyncAction) MarshalJSON() ([]byte, error) {
	var payload any
	switch a.Type {
	case ActionInsert:
		payload = a.Todo
	case ActionUpdate:
		payload = a.Patch
	case ActionDelete:
		payload = a.ID
	default:
		return nil, fmt.Errorf("%w: type %q", ErrInvalidAction, a.Type)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireAction{ID: a.ID, Type: a.Type, Payload: raw, Timestamp: a.Timestamp})
}

func (a *SyncAction) UnmarshalJSON(data []byte) error {
	var w wireAction
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidAction)
	}
	out := SyncAction{ID: w.ID, Type: w.Type, Timestamp: w.Timestamp}
	switch w.Type {
	case ActionInsert:
		if err := json.Unmarshal(w.Payload, &out.Todo); err != nil {
			return fmt.Errorf("%w: insert payload: %v", ErrInvalidAction, err)
		}
	case ActionUpdate:
		if err := json.Unmarshal(w.Payload, &out.Patch); err != nil {
			return fmt.Errorf("%w: update payload: %v", ErrInvalidAction, err)
		}
	case ActionDelete:
	default:
		return fmt.Errorf("%w: type %q", ErrInvalidAction, w.Type)
	}
	*a = out
	return nil
}
