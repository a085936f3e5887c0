package domain

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// StatusTransitions lists the states reachable from each state. DONE is terminal.
var StatusTransitions = map[Status][]Status{
	StatusTodo:       {StatusInProgress},
	StatusInProgress: {StatusTodo, StatusDone},
	StatusDone:       {},
}

func (s Status) Valid() bool {
	_, ok := StatusTransitions[s]
	return ok
}

// ParseStatus accepts a status name in any case.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range StatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition fails with an INVALID error when from -> to is not an edge of the lifecycle.
func ValidateTransition(from, to Status) error {
	if from.CanTransitionTo(to) {
		return nil
	}
	return NewError(ErrCodeInvalid, fmt.Sprintf("invalid status transition: cannot change from %s to %s", from, to))
}

// StatusForColumn derives a task status from a column title. A column literally
// titled after a status (case-insensitive) drives that status; any other title
// yields ok == false.
func StatusForColumn(title string) (status Status, ok bool) {
	status = Status(strings.ToUpper(title))
	if !status.Valid() {
		return "", false
	}
	return status, true
}

// InitialStatus is the status a task receives when created in a column with the given title.
func InitialStatus(columnTitle string) Status {
	if status, ok := StatusForColumn(columnTitle); ok {
		return status
	}
	return StatusTodo
}
