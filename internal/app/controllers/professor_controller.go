package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursereview/internal/app/models/dto"
	"github.com/yigit/coursereview/internal/app/services"
	"github.com/yigit/coursereview/internal/middleware"
	"github.com/yigit/coursereview/internal/pkg/helpers"
)

// ProfessorController handles the professor catalogue
type ProfessorController struct {
	professorService services.ProfessorService
}

// NewProfessorController creates a new ProfessorController
func NewProfessorController(professorService services.ProfessorService) *ProfessorController {
	return &ProfessorController{professorService: professorService}
}

// CreateProfessor handles professor creation
// @Summary Create a professor
// @Description Creates a professor together with any initial courses
// @Tags professors
// @Accept json
// @Produce json
// @Param request body dto.CreateProfessorRequest true "Professor"
// @Success 201 {object} dto.APIResponse{data=models.Professor}
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Router /professors [post]
func (c *ProfessorController) CreateProfessor(ctx *gin.Context) {
	var req dto.CreateProfessorRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	professor, err := c.professorService.CreateProfessor(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(professor, "Professor created successfully"))
}

// AddCourse attaches a course to a professor
// @Summary Add a course
// @Tags professors
// @Accept json
// @Produce json
// @Param id path int true "Professor ID"
// @Param request body dto.CourseRequest true "Course"
// @Success 201 {object} dto.APIResponse{data=models.Course}
// @Failure 404 {object} dto.APIResponse "Professor not found"
// @Router /professors/{id}/courses [post]
func (c *ProfessorController) AddCourse(ctx *gin.Context) {
	professorID, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.professorService.AddCourse(ctx.Request.Context(), professorID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(course, "Course created successfully"))
}

// ListProfessors returns a page of professors
// @Summary List professors
// @Tags professors
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ProfessorListResponse}
// @Router /professors [get]
func (c *ProfessorController) ListProfessors(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	list, err := c.professorService.ListProfessors(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list, ""))
}

// GetProfessorBio returns a professor with courses, averages and comments
// @Summary Get professor page
// @Tags professors
// @Produce json
// @Param id path int true "Professor ID"
// @Success 200 {object} dto.APIResponse{data=dto.ProfessorBioResponse}
// @Failure 404 {object} dto.APIResponse "Professor not found"
// @Router /professors/{id} [get]
func (c *ProfessorController) GetProfessorBio(ctx *gin.Context) {
	professorID, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	bio, err := c.professorService.GetProfessorBio(ctx.Request.Context(), professorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.ProfessorBioResponse{
		Professor: bio.Professor,
		Courses:   make([]dto.CourseSummary, 0, len(bio.Courses)),
	}
	for _, course := range bio.Courses {
		resp.Courses = append(resp.Courses, dto.CourseSummary{
			Course:   course,
			Comments: bio.CommentsByCourse[course.ID],
		})
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}
