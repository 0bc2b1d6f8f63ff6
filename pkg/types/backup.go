package types

import "time"

// Backup describes one snapshot file of a collection.
type Backup struct {
	File    string    `json:"file"`
	Label   string    `json:"label"`
	Token   string    `json:"token"`
	Restore bool      `json:"restore"`
	Time    time.Time `json:"time"`
	Size    int64     `json:"size"`
}
