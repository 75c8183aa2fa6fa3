package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursereview/internal/app/models/dto"
	"github.com/yigit/coursereview/internal/app/services"
	"github.com/yigit/coursereview/internal/middleware"
)

// SearchController resolves professor searches
type SearchController struct {
	searchService services.SearchService
}

// NewSearchController creates a new SearchController
func NewSearchController(searchService services.SearchService) *SearchController {
	return &SearchController{searchService: searchService}
}

// Search finds professors by name, course number or department
// @Summary Search professors
// @Description Case-insensitive substring search. Returns no_results, resolved (single professor) or ambiguous (list ordered by id)
// @Tags search
// @Produce json
// @Param professor query string false "Professor name fragment"
// @Param courseNumber query string false "Course number fragment"
// @Param department query string false "Department fragment"
// @Success 200 {object} dto.APIResponse{data=dto.SearchResponse}
// @Failure 400 {object} dto.APIResponse "No search term given"
// @Router /search [get]
func (c *SearchController) Search(ctx *gin.Context) {
	var req dto.SearchRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}

	result, err := c.searchService.Search(ctx.Request.Context(), services.SearchQuery{
		Professor:    req.Professor,
		CourseNumber: req.CourseNumber,
		Department:   req.Department,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.SearchResponse{Outcome: string(result.Outcome)}
	switch result.Outcome {
	case services.SearchResolved:
		id := result.ProfessorID
		resp.ProfessorID = &id
	case services.SearchAmbiguous:
		resp.Matches = result.Matches
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}
