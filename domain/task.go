package domain

import "time"

// Task is a card positioned inside a column. BoardID always equals the column's board.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Status      Status    `json:"status"`
	Position    int       `json:"position"`
	ColumnID    string    `json:"column_id"`
	BoardID     string    `json:"board_id"`
	CreatedByID string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *Task) Placement() Placement {
	return Placement{Container: t.ColumnID, Position: t.Position}
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusDone
}
