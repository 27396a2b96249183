package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Enrollment statuses
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusDropped   = "dropped"
	StatusSuspended = "suspended"
)

// Assessment types
const (
	AssessmentAssignment = "assignment"
	AssessmentTest       = "test"
	AssessmentQuiz       = "quiz"
	AssessmentProject    = "project"
)

// IsValidStatus reports whether s is one of the four enrollment statuses
func IsValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusCompleted, StatusDropped, StatusSuspended:
		return true
	}
	return false
}

// AttendanceEntry tracks attendance for one course session. One entry exists per
// session that was on the course when the enrollment was created.
type AttendanceEntry struct {
	SessionID  string     `json:"session_id"`
	Attended   bool       `json:"attended"`
	AttendedAt *time.Time `json:"attended_at"`
}

// Assessment is a graded assignment/test/quiz/project score, append-only
type Assessment struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Score       float64   `json:"score"`
	MaxScore    float64   `json:"max_score"`
	SubmittedAt time.Time `json:"submitted_at"`
	GradedAt    time.Time `json:"graded_at"`
}

// Enrollment tracks a user's registration in a course with attendance,
// assessment and certificate state
type Enrollment struct {
	gorm.Model
	UserID              uint                                 `json:"user_id" gorm:"index:idx_user_course;not null"`
	CourseID            uint                                 `json:"course_id" gorm:"index:idx_user_course;not null"`
	Status              string                               `json:"status" gorm:"default:'active'"`
	EnrolledAt          time.Time                            `json:"enrolled_at"`
	CompletedAt         *time.Time                           `json:"completed_at"`
	Attendance          datatypes.JSONSlice[AttendanceEntry] `json:"attendance"`
	Assessments         datatypes.JSONSlice[Assessment]      `json:"assessments"`
	CertificateIssued   bool                                 `json:"certificate_issued" gorm:"default:false"`
	CertificateIssuedAt *time.Time                           `json:"certificate_issued_at"`
	CertificateNumber   string                               `json:"certificate_number"`
	CertificateURL      string                               `json:"certificate_url"`
	IsDeleted           bool                                 `json:"-" gorm:"default:false"`
}

// AttendedSessions counts the sessions marked attended
func (e *Enrollment) AttendedSessions() int {
	attended := 0
	for _, entry := range e.Attendance {
		if entry.Attended {
			attended++
		}
	}
	return attended
}

// AttendancePercentage is attended sessions / total sessions * 100, 0 when the
// course had no sessions at enrollment time. Computed on read, never stored.
func (e *Enrollment) AttendancePercentage() float64 {
	if len(e.Attendance) == 0 {
		return 0
	}
	return float64(e.AttendedSessions()) / float64(len(e.Attendance)) * 100
}

// AverageScore is the mean of score/max_score*100 across all assessments, 0 when
// none exist. Computed on read, never stored.
func (e *Enrollment) AverageScore() float64 {
	if len(e.Assessments) == 0 {
		return 0
	}
	var sum float64
	for _, a := range e.Assessments {
		if a.MaxScore > 0 {
			sum += a.Score / a.MaxScore * 100
		}
	}
	return sum / float64(len(e.Assessments))
}
