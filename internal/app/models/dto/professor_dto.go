package dto

import "github.com/yigit/coursereview/internal/app/models"

// CourseRequest describes a course to create.
type CourseRequest struct {
	CourseNumber string `json:"courseNumber" binding:"required,max=20" example:"CS101"`
	Title        string `json:"title" binding:"required,max=200" example:"Introduction to Programming"`
}

// CreateProfessorRequest creates a professor together with any initial courses.
type CreateProfessorRequest struct {
	Name       string          `json:"name" binding:"required,min=2,max=100" example:"Ada Smith"`
	Department string          `json:"department" binding:"required,max=100" example:"Computer Science"`
	Bio        *string         `json:"bio,omitempty" binding:"omitempty,max=4000"`
	Courses    []CourseRequest `json:"courses,omitempty" binding:"omitempty,dive"`
}

// ProfessorListResponse is one page of professors.
type ProfessorListResponse struct {
	Professors []*models.Professor `json:"professors"`
	PaginationInfo
}

// CourseSummary is a course with its comments on the professor page.
type CourseSummary struct {
	*models.Course
	Comments []*models.Comment `json:"comments"`
}

// ProfessorBioResponse is the professor page payload.
type ProfessorBioResponse struct {
	Professor *models.Professor `json:"professor"`
	Courses   []CourseSummary   `json:"courses"`
}
