package dto

import "github.com/yigit/coursereview/internal/app/models"

// SearchRequest carries the optional search terms from the query string.
type SearchRequest struct {
	Professor    *string `form:"professor"`
	CourseNumber *string `form:"courseNumber"`
	Department   *string `form:"department"`
}

// SearchResponse reports the resolution outcome. ProfessorID is set when Outcome is
// "resolved"; Matches is set when Outcome is "ambiguous".
type SearchResponse struct {
	Outcome     string                   `json:"outcome" enums:"no_results,resolved,ambiguous"`
	ProfessorID *int64                   `json:"professorId,omitempty"`
	Matches     []*models.ProfessorMatch `json:"matches,omitempty"`
}
