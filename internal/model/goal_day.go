package model

import (
	"time"
)

const (
	DayFieldIntent = "intent"
	DayFieldAction = "action"
)

// GoalDay is one calendar date of a goal. Date is an ISO date in the user's
// zone; the text fields stay nil until something is written.
type GoalDay struct {
	ID        string    `db:"id" json:"id"`
	GoalID    string    `db:"goal_id" json:"goalId"`
	Date      string    `db:"date" json:"date"`
	Intent    *string   `db:"intent" json:"intent"`
	Action    *string   `db:"action" json:"action"`
	Notes     *string   `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (d *GoalDay) IntentText() string {
	if d.Intent == nil {
		return ""
	}
	return *d.Intent
}

func (d *GoalDay) ActionText() string {
	if d.Action == nil {
		return ""
	}
	return *d.Action
}

func (d *GoalDay) NotesText() string {
	if d.Notes == nil {
		return ""
	}
	return *d.Notes
}
