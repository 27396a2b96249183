package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	courseController "lms/controllers/course"
	enrollmentController "lms/controllers/enrollment"
	"lms/middleware"
	courseValidator "lms/validators/course"
	enrollmentValidator "lms/validators/enrollment"
)

// SetupCourseRoutes sets up all user-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	userGroup := app.Group("/course")

	// Course listing and details (published courses)
	userGroup.Get("/list", middleware.JWTMiddleware, courseValidator.CourseList(), courseController.GetAllCourses)
	userGroup.Get("/:id", middleware.JWTMiddleware, courseValidator.GetCourseDetail(), courseController.GetCourseDetails)

	// Enrollment
	userGroup.Post("/:id/enroll", middleware.JWTMiddleware, enrollmentValidator.EnrollCourse(), enrollmentController.EnrollInCourse)

	// User enrollments
	userEnrollGroup := app.Group("/user")
	userEnrollGroup.Get("/enrollments", middleware.JWTMiddleware, enrollmentController.GetUserEnrollments)

	// Eligibility and progress
	enrollmentGroup := app.Group("/enrollment")
	enrollmentGroup.Get("/:id/eligibility", middleware.JWTMiddleware, enrollmentValidator.EnrollmentID(), enrollmentController.CheckCertificateEligibility)
	enrollmentGroup.Get("/:id/progress", middleware.JWTMiddleware, enrollmentValidator.EnrollmentID(), enrollmentController.GetProgressReport)
}
