package enrollment

import (
	"errors"
	"strings"
)

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseNotPublished = errors.New("course is not available for enrollment")
	ErrAlreadyEnrolled    = errors.New("user already enrolled in this course")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrSessionNotFound    = errors.New("session not found in enrollment")
	ErrInvalidStatus      = errors.New("invalid enrollment status")
	ErrCertificateIssued  = errors.New("certificate already issued")
)

// NotEligibleError is returned by IssueCertificate when one or more
// certificate criteria are unmet. Reasons carries every failing criterion.
type NotEligibleError struct {
	Reasons []string
}

func (e *NotEligibleError) Error() string {
	return "Not eligible for certificate: " + strings.Join(e.Reasons, "; ")
}
