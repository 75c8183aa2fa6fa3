package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursereview/internal/app/models"
)

func TestCommentRepository_Insert(t *testing.T) {
	mock := newMock(t)
	repo := NewCommentRepository()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO comments \(course_id,user_id,content\)`).
		WithArgs(int64(7), int64(42), "Great lectures overall").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), now))

	comment := &models.Comment{CourseID: 7, UserID: 42, Content: "Great lectures overall"}
	require.NoError(t, repo.Insert(context.Background(), mock, comment))

	assert.Equal(t, int64(9), comment.ID)
}

func TestCommentRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewCommentRepository()

	mock.ExpectQuery(`FROM comments WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), mock, 9)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentRepository_Delete(t *testing.T) {
	mock := newMock(t)
	repo := NewCommentRepository()

	mock.ExpectExec(`DELETE FROM comments WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM comments WHERE id = \$1`).
		WithArgs(int64(10)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), mock, 9))
	assert.ErrorIs(t, repo.Delete(context.Background(), mock, 10), ErrNotFound)
}

func TestCommentRepository_ListByCourseIDs(t *testing.T) {
	mock := newMock(t)
	repo := NewCommentRepository()
	now := time.Now()

	mock.ExpectQuery(`FROM comments WHERE course_id IN \(\$1,\$2\) ORDER BY created_at DESC, id DESC`).
		WithArgs(int64(5), int64(6)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "course_id", "user_id", "content", "created_at"}).
			AddRow(int64(2), int64(6), int64(1), "Tough but fair grading", now).
			AddRow(int64(1), int64(5), int64(3), "Would recommend to anyone", now.Add(-time.Hour)))

	comments, err := repo.ListByCourseIDs(context.Background(), mock, []int64{5, 6})

	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, int64(2), comments[0].ID)
	assert.Equal(t, models.UserID(3), comments[1].UserID)
}

func TestCommentRepository_ListByCourseIDs_NoCourses(t *testing.T) {
	mock := newMock(t)

	comments, err := NewCommentRepository().ListByCourseIDs(context.Background(), mock, nil)

	require.NoError(t, err)
	assert.Empty(t, comments)
}
