package repositories

import (
	"errors"

	"github.com/Masterminds/squirrel"
)

// Shared repository errors. Services translate them into apperrors.
var (
	// ErrNotFound is returned when a lookup or a targeted write matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrRatingAlreadyExists is returned when ratings_user_course_unique rejects an insert.
	ErrRatingAlreadyExists = errors.New("rating already exists for this user and course")
	// ErrReferenceMissing is returned when a foreign key points at a missing row.
	ErrReferenceMissing = errors.New("referenced record does not exist")
)

// RatingUserCourseConstraint is the unique constraint guarding one rating per user and course.
const RatingUserCourseConstraint = "ratings_user_course_unique"

// Repositories holds all the repository instances
type Repositories struct {
	ProfessorRepository *ProfessorRepository
	CourseRepository    *CourseRepository
	RatingRepository    *RatingRepository
	CommentRepository   *CommentRepository
}

// NewRepositories initializes all repositories
func NewRepositories() *Repositories {
	return &Repositories{
		ProfessorRepository: NewProfessorRepository(),
		CourseRepository:    NewCourseRepository(),
		RatingRepository:    NewRatingRepository(),
		CommentRepository:   NewCommentRepository(),
	}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
