package models

import "time"

// WorkOrder is a maintenance request owned by the approval workflow after
// creation. Each stage records a milestone triple (timestamp, actor, notes);
// a milestone timestamp is non-null exactly when that stage has been passed
// and is never rewound except by an explicit reject transition clearing
// forward-looking fields.
type WorkOrder struct {
	BaseModel

	HospitalID string  `gorm:"type:uuid;index;not null" json:"hospital_id"`
	AssetID    *string `gorm:"type:uuid;index" json:"asset_id"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Priority    string `gorm:"type:varchar(16);default:'medium'" json:"priority"`

	Status string `gorm:"type:varchar(40);not null;index" json:"status"`

	ReporterID string  `gorm:"type:uuid;index;not null" json:"reporter_id"`
	AssigneeID *string `gorm:"type:uuid;index" json:"assignee_id"`

	WorkStartedAt *time.Time `json:"work_started_at"`
	WorkStartedBy *string    `gorm:"type:uuid" json:"work_started_by"`

	TechnicianCompletedAt *time.Time `json:"technician_completed_at"`
	TechnicianCompletedBy *string    `gorm:"type:uuid" json:"technician_completed_by"`
	TechnicianNotes       string     `gorm:"type:text" json:"technician_notes"`

	SupervisorApprovedAt *time.Time `json:"supervisor_approved_at"`
	SupervisorApprovedBy *string    `gorm:"type:uuid" json:"supervisor_approved_by"`
	SupervisorNotes      string     `gorm:"type:text" json:"supervisor_notes"`

	EngineerApprovedAt *time.Time `json:"engineer_approved_at"`
	EngineerApprovedBy *string    `gorm:"type:uuid" json:"engineer_approved_by"`
	EngineerNotes      string     `gorm:"type:text" json:"engineer_notes"`

	CustomerReviewedAt *time.Time `json:"customer_reviewed_at"`
	CustomerReviewedBy *string    `gorm:"type:uuid" json:"customer_reviewed_by"`
	CustomerNotes      string     `gorm:"type:text" json:"customer_notes"`

	ManagerApprovedAt *time.Time `json:"manager_approved_at"`
	ManagerApprovedBy *string    `gorm:"type:uuid" json:"manager_approved_by"`
	ManagerNotes      string     `gorm:"type:text" json:"manager_notes"`

	RejectedAt      *time.Time `json:"rejected_at"`
	RejectedBy      *string    `gorm:"type:uuid" json:"rejected_by"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`

	AutoClosedAt *time.Time `json:"auto_closed_at"`

	Hospital Hospital `gorm:"foreignKey:HospitalID" json:"-"`
	Asset    *Asset   `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
	Reporter User     `gorm:"foreignKey:ReporterID" json:"-"`
}
