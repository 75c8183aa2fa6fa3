package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/coursereview/internal/app/controllers"
)

// Controllers groups the handlers mounted by SetupRouter.
type Controllers struct {
	Review    *controllers.ReviewController
	Search    *controllers.SearchController
	Professor *controllers.ProfessorController
	Health    *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers) {
	router.GET("/health", c.Health.Health)

	// API version group
	v1 := router.Group("/api/v1")

	reviews := v1.Group("/reviews")
	{
		reviews.POST("", c.Review.SubmitReview)
		reviews.DELETE("/:ratingId", c.Review.DeleteReview)
	}

	v1.DELETE("/comments/:commentId", c.Review.DeleteComment)

	v1.GET("/search", c.Search.Search)

	professors := v1.Group("/professors")
	{
		professors.GET("", c.Professor.ListProfessors)
		professors.POST("", c.Professor.CreateProfessor)
		professors.GET("/:id", c.Professor.GetProfessorBio)
		professors.POST("/:id/courses", c.Professor.AddCourse)
	}
}
