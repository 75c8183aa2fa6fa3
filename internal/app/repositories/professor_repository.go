package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/coursereview/internal/app/models"
	"github.com/yigit/coursereview/internal/db"
	"github.com/yigit/coursereview/internal/pkg/helpers"
	"github.com/yigit/coursereview/internal/pkg/logger"
)

// FindProfessorsFilter narrows a professor search. Blank fields are ignored;
// present fields are matched case-insensitively as substrings and combined with AND.
type FindProfessorsFilter struct {
	Name         string
	CourseNumber string
	Department   string
}

// IsEmpty reports whether no term is present.
func (f FindProfessorsFilter) IsEmpty() bool {
	return f.Name == "" && f.CourseNumber == "" && f.Department == ""
}

// ProfessorRepository handles professor database operations
type ProfessorRepository struct {
	sb squirrel.StatementBuilderType
}

// NewProfessorRepository creates a new ProfessorRepository
func NewProfessorRepository() *ProfessorRepository {
	return &ProfessorRepository{sb: statementBuilder()}
}

// Create stores a professor and fills in its ID and CreatedAt.
func (r *ProfessorRepository) Create(ctx context.Context, q db.Querier, professor *models.Professor) error {
	sql, args, err := r.sb.Insert("professors").
		Columns("name", "department", "bio").
		Values(professor.Name, professor.Department, helpers.GetNullString(professor.Bio)).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create professor query: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&professor.ID, &professor.CreatedAt); err != nil {
		logger.Error().Err(err).Str("name", professor.Name).Msg("Error creating professor")
		return fmt.Errorf("error creating professor: %w", err)
	}

	return nil
}

// GetByID retrieves a professor by ID
func (r *ProfessorRepository) GetByID(ctx context.Context, q db.Querier, id int64) (*models.Professor, error) {
	sql, args, err := r.sb.Select("id", "name", "department", "bio", "created_at").
		From("professors").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get professor query: %w", err)
	}

	professor, err := scanProfessor(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting professor by ID: %w", err)
	}

	return professor, nil
}

// List returns one page of professors ordered by name, plus the total count.
func (r *ProfessorRepository) List(ctx context.Context, q db.Querier, offset, limit uint64) ([]*models.Professor, int64, error) {
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("professors").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count professors query: %w", err)
	}

	var total int64
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count professors query")
		return nil, 0, fmt.Errorf("failed to count professors: %w", err)
	}
	if total == 0 {
		return []*models.Professor{}, 0, nil
	}

	sql, args, err := r.sb.Select("id", "name", "department", "bio", "created_at").
		From("professors").
		OrderBy("name ASC", "id ASC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list professors query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying professors: %w", err)
	}
	defer rows.Close()

	professors := []*models.Professor{}
	for rows.Next() {
		professor, err := scanProfessor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning professor row: %w", err)
		}
		professors = append(professors, professor)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating professor rows: %w", err)
	}

	return professors, total, nil
}

// Find returns the distinct professors matching every present term of the filter,
// ordered by professor ID.
func (r *ProfessorRepository) Find(ctx context.Context, q db.Querier, filter FindProfessorsFilter) ([]*models.ProfessorMatch, error) {
	query := r.sb.Select("p.id", "p.name").
		Distinct().
		From("professors p")

	if filter.CourseNumber != "" {
		query = query.Join("courses c ON c.professor_id = p.id")
	}
	if filter.Name != "" {
		query = query.Where(squirrel.ILike{"p.name": helpers.ContainsPattern(filter.Name)})
	}
	if filter.CourseNumber != "" {
		query = query.Where(squirrel.ILike{"c.course_number": helpers.ContainsPattern(filter.CourseNumber)})
	}
	if filter.Department != "" {
		query = query.Where(squirrel.ILike{"p.department": helpers.ContainsPattern(filter.Department)})
	}

	sql, args, err := query.OrderBy("p.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find professors query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("query", sql).Msg("Error executing find professors query")
		return nil, fmt.Errorf("error finding professors: %w", err)
	}
	defer rows.Close()

	matches := []*models.ProfessorMatch{}
	for rows.Next() {
		match := &models.ProfessorMatch{}
		if err := rows.Scan(&match.ProfessorID, &match.ProfessorName); err != nil {
			return nil, fmt.Errorf("error scanning professor match: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating professor matches: %w", err)
	}

	return matches, nil
}

func scanProfessor(row pgx.Row) (*models.Professor, error) {
	professor := &models.Professor{}
	var bio sql.NullString
	if err := row.Scan(&professor.ID, &professor.Name, &professor.Department, &bio, &professor.CreatedAt); err != nil {
		return nil, err
	}
	professor.Bio = helpers.StringPtr(bio)
	return professor, nil
}
