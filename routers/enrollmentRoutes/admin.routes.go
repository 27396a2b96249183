package enrollmentRoutes

import (
	"github.com/gofiber/fiber/v2"

	courseController "lms/controllers/course"
	enrollmentController "lms/controllers/enrollment"
	"lms/middleware"
	courseValidator "lms/validators/course"
	enrollmentValidator "lms/validators/enrollment"
)

// SetupAdminRoutes sets up admin course and enrollment management routes
func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin")

	// Course management
	adminGroup.Post("/course", middleware.JWTMiddleware, courseValidator.CreateCourse(), courseController.AdminCreateCourse)
	adminGroup.Put("/course/:id", middleware.JWTMiddleware, courseValidator.GetCourseDetail(), courseValidator.UpdateCourse(), courseController.AdminUpdateCourse)
	adminGroup.Post("/course/:id/publish", middleware.JWTMiddleware, courseValidator.GetCourseDetail(), courseController.AdminPublishCourse)

	// Enrollment management
	adminGroup.Get("/enrollments", middleware.JWTMiddleware, enrollmentValidator.ListEnrollments(), enrollmentController.AdminListEnrollments)
	adminGroup.Get("/enrollment/:id", middleware.JWTMiddleware, enrollmentValidator.EnrollmentID(), enrollmentController.AdminGetEnrollment)
	adminGroup.Put("/enrollment/:id/status", middleware.JWTMiddleware, enrollmentValidator.EnrollmentID(), enrollmentValidator.UpdateStatus(), enrollmentController.AdminUpdateEnrollmentStatus)
	adminGroup.Post("/enrollment/:id/attendance", middleware.JWTMiddleware, enrollmentValidator.EnrollmentID(), enrollmentValidator.MarkAttendance(), enrollmentController.AdminMarkAttendance)
	adminGroup.Post("/enrollment/:id/assessment", middleware.JWTMiddleware, enrollmentValidator.EnrollmentID(), enrollmentValidator.AddAssessment(), enrollmentController.AdminAddAssessment)
	adminGroup.Post("/enrollment/:id/certificate", middleware.JWTMiddleware, enrollmentValidator.EnrollmentID(), enrollmentController.AdminIssueCertificate)
	adminGroup.Delete("/enrollment/:id", middleware.JWTMiddleware, enrollmentValidator.EnrollmentID(), enrollmentController.AdminDeleteEnrollment)
}
