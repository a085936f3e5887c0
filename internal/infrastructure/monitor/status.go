package monitor

import "time"

type Status struct {
	Driver    string    `json:"driver"`
	Database  bool      `json:"database"`
	Redis     bool      `json:"redis"`
	LastCheck time.Time `json:"last_check"`
}
