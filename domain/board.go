package domain

import (
	"strings"
	"time"
)

// Board is the top-level container owned by a single user.
type Board struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Role is the access level a membership grants on a board.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleMember Role = "MEMBER"
)

// ParseRole accepts a role name in any case. An empty value yields RoleMember.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case "", RoleMember:
		return RoleMember, nil
	case RoleOwner:
		return RoleOwner, nil
	default:
		return "", ErrInvalidRole
	}
}

// BoardMember grants a user access to a board. Exactly one member per board holds RoleOwner.
type BoardMember struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *BoardMember) HasRole(role Role) bool {
	return m != nil && m.Role == role
}

// Covers reports whether the membership grants access to boardID.
func (m *BoardMember) Covers(boardID string) bool {
	return m != nil && m.BoardID == boardID
}

// BoardView is the read model returned when a board is opened.
type BoardView struct {
	Board   Board         `json:"board"`
	Columns []Column      `json:"columns"`
	Tasks   []Task        `json:"tasks"`
	Members []BoardMember `json:"members"`
}
