package domain

import "time"

// Column is an ordered lane of a board. Positions are contiguous per board.
type Column struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board_id"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Column) Placement() Placement {
	return Placement{Container: c.BoardID, Position: c.Position}
}
