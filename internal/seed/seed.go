package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/coursereview/internal/app/models/dto"
	"github.com/yigit/coursereview/internal/app/services"
)

func strPtr(s string) *string { return &s }

// defaultProfessors is the catalogue loaded into an empty database.
var defaultProfessors = []dto.CreateProfessorRequest{
	{
		Name:       "Ada Lovelace",
		Department: "Mathematics",
		Bio:        strPtr("Works on analytical engines and numerical methods."),
		Courses: []dto.CourseRequest{
			{CourseNumber: "MATH 2410", Title: "Linear Algebra"},
			{CourseNumber: "MATH 3100", Title: "Numerical Analysis"},
		},
	},
	{
		Name:       "Grace Hopper",
		Department: "Computer Science",
		Bio:        strPtr("Compiler construction and programming languages."),
		Courses: []dto.CourseRequest{
			{CourseNumber: "CS101", Title: "Introduction to Programming"},
			{CourseNumber: "CS 4400", Title: "Compilers"},
		},
	},
	{
		Name:       "Alan Smith",
		Department: "Computer Science",
		Courses: []dto.CourseRequest{
			{CourseNumber: "CS 2110", Title: "Data Structures"},
		},
	},
	{
		Name:       "Maria Smith",
		Department: "Physics",
		Courses: []dto.CourseRequest{
			{CourseNumber: "PHYS 1112", Title: "Mechanics"},
		},
	},
}

// CreateDefaultData loads the default catalogue when no professor exists yet.
func CreateDefaultData(ctx context.Context, professorService services.ProfessorService, lgr zerolog.Logger) error {
	existing, err := professorService.ListProfessors(ctx, 1, 1)
	if err != nil {
		return fmt.Errorf("failed to check existing professors: %w", err)
	}
	if existing.TotalItems > 0 {
		lgr.Info().Int64("professors", existing.TotalItems).Msg("Catalogue already populated, skipping seed")
		return nil
	}

	lgr.Info().Msg("Creating default catalogue (professors/courses)...")
	var finalErr error // To collect potential errors without stopping the process
	for i := range defaultProfessors {
		req := defaultProfessors[i]
		professor, err := professorService.CreateProfessor(ctx, &req)
		if err != nil {
			lgr.Error().Err(err).Str("name", req.Name).Msg("Error creating default professor")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Debug().Int64("professorID", professor.ID).Str("name", professor.Name).Msg("Default professor created")
	}

	return finalErr
}
