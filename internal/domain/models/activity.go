package models

import "time"

// Activity is a scheduled unit of field work on a crop. Active is true until
// the assigned executor finalizes it; finalized activities are never deleted.
type Activity struct {
	ID             string    `bson:"_id" json:"id"`
	CropID         string    `bson:"cropId" json:"cropId"`
	Description    string    `bson:"description" json:"description"`
	Category       string    `bson:"category" json:"category"`
	AssignedUsers  []string  `bson:"assignedUsers,omitempty" json:"assignedUsers,omitempty"`
	Date           time.Time `bson:"date" json:"date"`
	HoursDedicated float64   `bson:"hoursDedicated" json:"hoursDedicated"`
	HourlyRate     float64   `bson:"hourlyRate" json:"hourlyRate"`
	Active         bool      `bson:"active" json:"active"`
	Observation    string    `bson:"observation,omitempty" json:"observation,omitempty"`
	EvidenceImage  string    `bson:"evidenceImage,omitempty" json:"evidenceImage,omitempty"`
}
