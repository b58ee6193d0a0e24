package models

import "time"

// Operation kinds. Only main operations count toward rank progression.
const (
	OperationMain     = "main"
	OperationSide     = "side"
	OperationTraining = "training"
)

// Attendance statuses.
const (
	AttendancePresent = "present"
	AttendanceExcused = "excused"
	AttendanceAbsent  = "absent"
)

// Operation is a scheduled event members sign up for. The attendance subsystem
// owns these rows; the rank core only reads them.
type Operation struct {
	ID     string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name   string    `gorm:"not null" json:"name"`
	Kind   string    `gorm:"default:main;index" json:"kind"` // main | side | training
	HeldAt time.Time `json:"held_at"`
	Timestamps
}

// AttendanceRecord is one member's presence record for an operation.
// Append-only from this subsystem's point of view.
type AttendanceRecord struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`
	OperationID    string `gorm:"type:uuid;index;not null" json:"operation_id"`

	Operation *Operation `gorm:"foreignKey:OperationID;references:ID" json:"operation,omitempty"`

	Status string `gorm:"default:present" json:"status"` // present | excused | absent

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
