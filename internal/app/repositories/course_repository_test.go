package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursereview/internal/app/models"
)

var courseRowColumns = []string{"id", "course_number", "title", "professor_id", "average_rating", "created_at"}

func TestCourseRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewCourseRepository()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO courses \(course_number,title,professor_id\)`).
		WithArgs("CS 101", "Intro to Programming", int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), now))

	course := &models.Course{CourseNumber: "CS 101", Title: "Intro to Programming", ProfessorID: 2}
	require.NoError(t, repo.Create(context.Background(), mock, course))

	assert.Equal(t, int64(5), course.ID)
	assert.Nil(t, course.AverageRating)
}

func TestCourseRepository_Create_UnknownProfessor(t *testing.T) {
	mock := newMock(t)
	repo := NewCourseRepository()

	mock.ExpectQuery(`INSERT INTO courses`).
		WithArgs("CS 101", "Intro", int64(404)).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.Create(context.Background(), mock, &models.Course{CourseNumber: "CS 101", Title: "Intro", ProfessorID: 404})

	assert.ErrorIs(t, err, ErrReferenceMissing)
}

func TestCourseRepository_GetByID(t *testing.T) {
	now := time.Now()

	t.Run("with average", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT id, course_number, title, professor_id, average_rating, created_at FROM courses WHERE id = \$1`).
			WithArgs(int64(5)).
			WillReturnRows(pgxmock.NewRows(courseRowColumns).AddRow(int64(5), "CS 101", "Intro", int64(2), 3.5, now))

		course, err := NewCourseRepository().GetByID(context.Background(), mock, 5)

		require.NoError(t, err)
		require.NotNil(t, course.AverageRating)
		assert.InDelta(t, 3.5, *course.AverageRating, 1e-9)
	})

	t.Run("without ratings", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM courses WHERE id = \$1`).
			WithArgs(int64(5)).
			WillReturnRows(pgxmock.NewRows(courseRowColumns).AddRow(int64(5), "CS 101", "Intro", int64(2), nil, now))

		course, err := NewCourseRepository().GetByID(context.Background(), mock, 5)

		require.NoError(t, err)
		assert.Nil(t, course.AverageRating)
	})

	t.Run("missing", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM courses WHERE id = \$1`).
			WithArgs(int64(5)).
			WillReturnError(pgx.ErrNoRows)

		_, err := NewCourseRepository().GetByID(context.Background(), mock, 5)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCourseRepository_LockForUpdate(t *testing.T) {
	mock := newMock(t)
	repo := NewCourseRepository()

	mock.ExpectQuery(`SELECT id FROM courses WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(`SELECT id FROM courses WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(6)).
		WillReturnError(pgx.ErrNoRows)

	require.NoError(t, repo.LockForUpdate(context.Background(), mock, 5))
	assert.ErrorIs(t, repo.LockForUpdate(context.Background(), mock, 6), ErrNotFound)
}

func TestCourseRepository_SetAverage(t *testing.T) {
	mock := newMock(t)
	repo := NewCourseRepository()
	avg := 3.5

	mock.ExpectExec(`UPDATE courses SET average_rating = \$1 WHERE id = \$2`).
		WithArgs(3.5, int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE courses SET average_rating = \$1 WHERE id = \$2`).
		WithArgs(nil, int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE courses`).
		WithArgs(nil, int64(6)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.SetAverage(context.Background(), mock, 5, &avg))
	require.NoError(t, repo.SetAverage(context.Background(), mock, 5, nil))
	assert.ErrorIs(t, repo.SetAverage(context.Background(), mock, 6, nil), ErrNotFound)
}

func TestCourseRepository_ListByProfessor(t *testing.T) {
	mock := newMock(t)
	repo := NewCourseRepository()
	now := time.Now()

	mock.ExpectQuery(`FROM courses WHERE professor_id = \$1 ORDER BY course_number ASC, id ASC`).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows(courseRowColumns).
			AddRow(int64(5), "CS 101", "Intro", int64(2), 4.0, now).
			AddRow(int64(6), "CS 201", "Data Structures", int64(2), nil, now))

	courses, err := repo.ListByProfessor(context.Background(), mock, 2)

	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "CS 101", courses[0].CourseNumber)
	assert.Nil(t, courses[1].AverageRating)
}
