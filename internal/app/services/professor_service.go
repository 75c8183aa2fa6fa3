package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/coursereview/internal/app/models"
	"github.com/yigit/coursereview/internal/app/models/dto"
	"github.com/yigit/coursereview/internal/app/repositories"
	"github.com/yigit/coursereview/internal/pkg/apperrors"
	"github.com/yigit/coursereview/internal/pkg/helpers"
	"github.com/yigit/coursereview/internal/pkg/logger"
	"github.com/yigit/coursereview/internal/pkg/validation"
)

// ProfessorBio is everything shown on a professor's page.
type ProfessorBio struct {
	Professor *models.Professor
	Courses   []*models.Course
	// CommentsByCourse holds each course's comments, newest first. Every course has an entry.
	CommentsByCourse map[int64][]*models.Comment
	// AverageByCourse is nil for courses without ratings.
	AverageByCourse map[int64]*float64
}

// ProfessorService defines the interface for the professor catalogue
type ProfessorService interface {
	CreateProfessor(ctx context.Context, req *dto.CreateProfessorRequest) (*models.Professor, error)
	AddCourse(ctx context.Context, professorID int64, req *dto.CourseRequest) (*models.Course, error)
	ListProfessors(ctx context.Context, page, size int) (*dto.ProfessorListResponse, error)
	GetProfessorBio(ctx context.Context, professorID int64) (*ProfessorBio, error)
}

type professorServiceImpl struct {
	store         Store
	professorRepo *repositories.ProfessorRepository
	courseRepo    *repositories.CourseRepository
	commentRepo   *repositories.CommentRepository
}

// NewProfessorService creates a new professor service instance
func NewProfessorService(store Store, repos *repositories.Repositories) ProfessorService {
	return &professorServiceImpl{
		store:         store,
		professorRepo: repos.ProfessorRepository,
		courseRepo:    repos.CourseRepository,
		commentRepo:   repos.CommentRepository,
	}
}

func validateCourse(req *dto.CourseRequest) error {
	if req == nil {
		return apperrors.NewValidationError("course", "course is required")
	}
	if !validation.NewStringValidation(req.CourseNumber).WithPattern(validation.CompiledPatterns.CourseNumber).Validate() {
		return apperrors.NewValidationError("courseNumber", "course number must look like CS101 or MATH 2410")
	}
	if !validation.NewStringValidation(req.Title).WithMaxLength(validation.TitleMaxLength).Validate() {
		return apperrors.NewValidationError("title",
			fmt.Sprintf("title is required and must be at most %d characters", validation.TitleMaxLength))
	}
	return nil
}

func validateProfessor(req *dto.CreateProfessorRequest) error {
	if req == nil {
		return apperrors.NewValidationError("professor", "professor is required")
	}
	name := validation.NewStringValidation(req.Name).
		WithMinLength(validation.NameMinLength).
		WithMaxLength(validation.NameMaxLength)
	if !name.Validate() {
		return apperrors.NewValidationError("name",
			fmt.Sprintf("name must be between %d and %d characters", validation.NameMinLength, validation.NameMaxLength))
	}
	department := validation.NewStringValidation(req.Department).WithMaxLength(validation.NameMaxLength)
	if !department.Validate() {
		if department.Length() == 0 {
			return apperrors.NewValidationError("department", "department is required")
		}
		return apperrors.NewValidationError("department",
			fmt.Sprintf("department must be at most %d characters", validation.NameMaxLength))
	}
	if req.Bio != nil {
		bio := validation.NewStringValidation(*req.Bio).WithRequired(false).WithMaxLength(validation.BioMaxLength)
		if !bio.Validate() {
			return apperrors.NewValidationError("bio",
				fmt.Sprintf("bio must be at most %d characters", validation.BioMaxLength))
		}
	}
	for i := range req.Courses {
		if err := validateCourse(&req.Courses[i]); err != nil {
			return err
		}
	}
	return nil
}

// CreateProfessor stores a professor and its initial courses in one transaction.
func (s *professorServiceImpl) CreateProfessor(ctx context.Context, req *dto.CreateProfessorRequest) (*models.Professor, error) {
	if err := validateProfessor(req); err != nil {
		return nil, err
	}

	professor := &models.Professor{
		Name:       strings.TrimSpace(req.Name),
		Department: strings.TrimSpace(req.Department),
		Bio:        helpers.StringPtr(helpers.GetNullString(req.Bio)),
		Courses:    make([]*models.Course, 0, len(req.Courses)),
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.professorRepo.Create(ctx, tx, professor); err != nil {
			return err
		}
		for _, c := range req.Courses {
			course := &models.Course{
				CourseNumber: strings.TrimSpace(c.CourseNumber),
				Title:        strings.TrimSpace(c.Title),
				ProfessorID:  professor.ID,
			}
			if err := s.courseRepo.Create(ctx, tx, course); err != nil {
				return err
			}
			professor.Courses = append(professor.Courses, course)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error creating professor: %w", err)
	}

	logger.Ctx(ctx).Info().
		Int64("professorID", professor.ID).
		Int("courses", len(professor.Courses)).
		Msg("Professor created")

	return professor, nil
}

// AddCourse attaches a new course to an existing professor.
func (s *professorServiceImpl) AddCourse(ctx context.Context, professorID int64, req *dto.CourseRequest) (*models.Course, error) {
	if professorID <= 0 {
		return nil, apperrors.NewValidationError("professorId", "professor ID must be positive")
	}
	if err := validateCourse(req); err != nil {
		return nil, err
	}

	course := &models.Course{
		CourseNumber: strings.TrimSpace(req.CourseNumber),
		Title:        strings.TrimSpace(req.Title),
		ProfessorID:  professorID,
	}
	if err := s.courseRepo.Create(ctx, s.store.Querier(), course); err != nil {
		if errors.Is(err, repositories.ErrReferenceMissing) {
			return nil, apperrors.ErrProfessorNotFound
		}
		return nil, fmt.Errorf("error adding course: %w", err)
	}

	return course, nil
}

// ListProfessors returns one page of professors ordered by name.
func (s *professorServiceImpl) ListProfessors(ctx context.Context, page, size int) (*dto.ProfessorListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	professors, total, err := s.professorRepo.List(ctx, s.store.Querier(), offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing professors: %w", err)
	}

	return &dto.ProfessorListResponse{
		Professors:     professors,
		PaginationInfo: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// GetProfessorBio loads a professor with its courses, averages and comments.
func (s *professorServiceImpl) GetProfessorBio(ctx context.Context, professorID int64) (*ProfessorBio, error) {
	if professorID <= 0 {
		return nil, apperrors.NewValidationError("professorId", "professor ID must be positive")
	}
	q := s.store.Querier()

	professor, err := s.professorRepo.GetByID(ctx, q, professorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrProfessorNotFound
		}
		return nil, fmt.Errorf("error retrieving professor: %w", err)
	}

	courses, err := s.courseRepo.ListByProfessor(ctx, q, professorID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving courses: %w", err)
	}

	courseIDs := make([]int64, 0, len(courses))
	bio := &ProfessorBio{
		Professor:        professor,
		Courses:          courses,
		CommentsByCourse: make(map[int64][]*models.Comment, len(courses)),
		AverageByCourse:  make(map[int64]*float64, len(courses)),
	}
	for _, course := range courses {
		courseIDs = append(courseIDs, course.ID)
		bio.CommentsByCourse[course.ID] = []*models.Comment{}
		bio.AverageByCourse[course.ID] = course.AverageRating
	}

	comments, err := s.commentRepo.ListByCourseIDs(ctx, q, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("error retrieving comments: %w", err)
	}
	for _, comment := range comments {
		bio.CommentsByCourse[comment.CourseID] = append(bio.CommentsByCourse[comment.CourseID], comment)
	}

	return bio, nil
}
