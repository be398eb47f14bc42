package routes

import (
	"syllabus-review-api/controllers"
	"syllabus-review-api/middleware"
	"syllabus-review-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Syllabus Review API is running",
				})
			})
		}

		// Protected routes (require a resolved principal)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			reviewerRoles := []int{models.RoleDeptHead, models.RoleAcademicAffairs, models.RoleAdmin}

			// Rubric catalog
			rubrics := protected.Group("/rubrics")
			{
				rubrics.GET("", controllers.GetRubricTemplates)
				rubrics.GET("/:id", controllers.GetRubricTemplate)
				rubrics.POST("/:id/validate", controllers.ValidateRubricTemplate)
				rubrics.POST("", middleware.RequireRole(models.RoleAdmin), controllers.CreateRubricTemplate)
			}

			// Review schedules & reviewer directory
			schedules := protected.Group("/schedules")
			{
				schedules.GET("", controllers.GetSchedules)
				schedules.GET("/:id/reviewers", controllers.GetScheduleReviewers)
				schedules.POST("", middleware.RequireRole(models.RoleAdmin), controllers.CreateSchedule)
				schedules.POST("/:id/activate", middleware.RequireRole(models.RoleAdmin), controllers.ActivateSchedule)
				schedules.POST("/:id/reviewers", middleware.RequireRole(models.RoleAdmin), controllers.AssignReviewer)
			}

			// Syllabus lifecycle
			syllabi := protected.Group("/syllabi")
			{
				syllabi.GET("", controllers.GetSyllabi)
				syllabi.GET("/:id", controllers.GetSyllabus)
				syllabi.GET("/:id/ledger", controllers.GetSyllabusLedger)

				syllabi.POST("", middleware.RequireRole(models.RoleLecturer, models.RoleAdmin), controllers.CreateSyllabus)
				syllabi.PUT("/:id/content", middleware.RequireRole(models.RoleLecturer, models.RoleAdmin), controllers.SaveSyllabusContent)
				syllabi.POST("/:id/submit", middleware.RequireRole(models.RoleLecturer, models.RoleAdmin), controllers.SubmitSyllabus)

				syllabi.POST("/:id/approve", middleware.RequireRole(reviewerRoles...), controllers.ApproveSyllabus)
				syllabi.POST("/:id/reject", middleware.RequireRole(reviewerRoles...), controllers.RejectSyllabus)
				syllabi.POST("/:id/return-revision", middleware.RequireRole(reviewerRoles...), controllers.ReturnSyllabusForRevision)
				syllabi.POST("/:id/archive", middleware.RequireRole(models.RoleAdmin), controllers.ArchiveSyllabus)

				// Peer review (non-blocking, shares the rubric mechanics)
				syllabi.POST("/:id/peer-evaluations", controllers.SubmitPeerEvaluation)
				syllabi.GET("/:id/peer-evaluations", controllers.GetPeerEvaluations)
			}

			// Update request workflow
			requests := protected.Group("/update-requests")
			{
				requests.GET("", controllers.GetUpdateRequests)
				requests.GET("/:id", controllers.GetUpdateRequest)
				requests.GET("/:id/ledger", controllers.GetUpdateRequestLedger)
				requests.GET("/:id/evaluations", controllers.GetEvaluationAggregate)

				requests.POST("", middleware.RequireRole(models.RoleLecturer, models.RoleAdmin), controllers.CreateUpdateRequest)
				requests.PUT("/:id/draft", middleware.RequireRole(models.RoleLecturer, models.RoleAdmin), controllers.SaveUpdateRequestDraft)
				requests.POST("/:id/submit", middleware.RequireRole(models.RoleLecturer, models.RoleAdmin), controllers.SubmitUpdateRequest)
				requests.POST("/:id/cancel", controllers.CancelUpdateRequest)

				requests.POST("/:id/decide", middleware.RequireRole(reviewerRoles...), controllers.DecideUpdateRequest)
				requests.POST("/:id/evaluations", middleware.RequireRole(reviewerRoles...), controllers.SubmitEvaluationScores)
			}

			// Actionable items for the current reviewer
			protected.GET("/reviews/actionable", middleware.RequireRole(reviewerRoles...), controllers.GetActionableReviews)
		}
	}
}
