package courseValidator

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"lms/middleware"
	courseModels "lms/models/course"
)

// SessionRequest is one course session in a create/update payload. SessionID
// may be empty, in which case one is generated on create.
type SessionRequest struct {
	SessionID   string     `json:"session_id"`
	Title       string     `json:"title"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// CourseRequest is the validated course create/update payload
type CourseRequest struct {
	Title                  string                               `json:"title"`
	Description            string                               `json:"description"`
	Instructor             string                               `json:"instructor"`
	StartDate              *time.Time                           `json:"start_date"`
	EndDate                *time.Time                           `json:"end_date"`
	ThumbnailURL           string                               `json:"thumbnail_url"`
	Sessions               []SessionRequest                     `json:"sessions"`
	CertificateEligibility *courseModels.CertificateEligibility `json:"certificate_eligibility"`
}

func validateCourseBody(c *fiber.Ctx, requireTitle bool) (*CourseRequest, map[string]string) {
	reqData := new(CourseRequest)
	if err := c.BodyParser(reqData); err != nil {
		return nil, map[string]string{"body": "Invalid request body!"}
	}

	errors := make(map[string]string)

	reqData.Title = strings.TrimSpace(reqData.Title)
	if requireTitle && reqData.Title == "" {
		errors["title"] = "Title is required!"
	}

	if reqData.CertificateEligibility != nil {
		criteria := reqData.CertificateEligibility.Criteria
		if criteria.MinAttendance < 0 || criteria.MinAttendance > 100 {
			errors["min_attendance"] = "Minimum attendance must be between 0 and 100!"
		}
		if criteria.MinAssignmentScore < 0 || criteria.MinAssignmentScore > 100 {
			errors["min_assignment_score"] = "Minimum assignment score must be between 0 and 100!"
		}
		if criteria.MinTestScore < 0 || criteria.MinTestScore > 100 {
			errors["min_test_score"] = "Minimum test score must be between 0 and 100!"
		}
	}

	for i, session := range reqData.Sessions {
		if strings.TrimSpace(session.Title) == "" {
			errors["sessions"] = "Session " + strconv.Itoa(i+1) + " has no title!"
			break
		}
	}

	return reqData, errors
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData, errors := validateCourseBody(c, true)
		if reqData == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, errors["body"], nil)
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData, errors := validateCourseBody(c, false)
		if reqData == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, errors["body"], nil)
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func GetCourseDetail() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		if courseIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}

		// Validate CourseID is a valid integer
		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		c.Locals("validatedCourseList", reqData)
		return c.Next()
	}
}
