package enrollmentValidator

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"lms/middleware"
	courseModels "lms/models/course"
)

var validate = validator.New()

func EnrollCourse() fiber.Handler {
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

func EnrollmentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Enrollment ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Enrollment ID!", nil)
		}

		c.Locals("enrollmentID", uint(id))
		return c.Next()
	}
}

// StatusRequest is the validated status update payload
type StatusRequest struct {
	Status string `json:"status"`
}

func UpdateStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(StatusRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if !courseModels.IsValidStatus(reqData.Status) {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"status": "Status must be one of active, completed, dropped, suspended!",
			})
		}

		c.Locals("validatedStatus", reqData)
		return c.Next()
	}
}

// AttendanceRequest is the validated attendance payload
type AttendanceRequest struct {
	SessionID string `json:"session_id"`
	Attended  *bool  `json:"attended"`
}

func MarkAttendance() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AttendanceRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.SessionID) == "" {
			errors["session_id"] = "Session ID is required!"
		}
		if reqData.Attended == nil {
			errors["attended"] = "Attended flag is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAttendance", reqData)
		return c.Next()
	}
}

// AssessmentRequest is the validated assessment payload. MaxScore must cover
// Score here; the service appends whatever it is handed.
type AssessmentRequest struct {
	Type     string  `json:"type" validate:"required,oneof=assignment test quiz project"`
	Title    string  `json:"title" validate:"required"`
	Score    float64 `json:"score" validate:"min=0"`
	MaxScore float64 `json:"max_score" validate:"required,gt=0,gtefield=Score"`
}

func AddAssessment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AssessmentRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				switch fieldErr.Field() {
				case "Type":
					errors["type"] = "Type must be one of assignment, test, quiz, project!"
				case "Title":
					errors["title"] = "Title is required!"
				case "Score":
					errors["score"] = "Score must not be negative!"
				case "MaxScore":
					errors["max_score"] = "Max score must be positive and at least the score!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAssessment", reqData)
		return c.Next()
	}
}

// ListRequest is the validated admin enrollment listing query
type ListRequest struct {
	Page     *int   `query:"page"`
	Limit    *int   `query:"limit"`
	UserID   *int   `query:"user_id"`
	CourseID *int   `query:"course_id"`
	Status   string `query:"status"`
}

func ListEnrollments() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListRequest)

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		if reqData.Page != nil && *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit != nil && *reqData.Limit < 1 {
			errors["limit"] = "Limit must be greater than 0!"
		}
		if reqData.Status != "" && !courseModels.IsValidStatus(reqData.Status) {
			errors["status"] = "Status must be one of active, completed, dropped, suspended!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedEnrollmentList", reqData)
		return c.Next()
	}
}
