package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Session is a scheduled unit of a course against which attendance is tracked
type Session struct {
	SessionID   string     `json:"session_id"`
	Title       string     `json:"title"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// CertificateCriteria holds the percentage thresholds (0-100) gating certificate issuance
type CertificateCriteria struct {
	MinAttendance      float64 `json:"min_attendance"`
	MinAssignmentScore float64 `json:"min_assignment_score"`
	MinTestScore       float64 `json:"min_test_score"`
}

// CertificateEligibility is the course-level certificate configuration
type CertificateEligibility struct {
	Enabled  bool                `json:"enabled"`
	Criteria CertificateCriteria `json:"criteria"`
}

// Course represents a learning course
type Course struct {
	gorm.Model
	Title                  string                                     `json:"title"`
	Description            string                                     `json:"description"`
	Instructor             string                                     `json:"instructor"`
	StartDate              *time.Time                                 `json:"start_date"`
	EndDate                *time.Time                                 `json:"end_date"`
	Status                 string                                     `json:"status" gorm:"default:'DRAFT'"` // DRAFT, ACTIVE
	ThumbnailURL           string                                     `json:"thumbnail_url"`
	IsPublished            bool                                       `json:"is_published" gorm:"default:false"`
	EnrollmentCount        int64                                      `json:"enrollment_count" gorm:"default:0"`
	Sessions               datatypes.JSONSlice[Session]               `json:"sessions"`
	CertificateEligibility datatypes.JSONType[CertificateEligibility] `json:"certificate_eligibility"`
	IsDeleted              bool                                       `json:"-" gorm:"default:false"`
}
