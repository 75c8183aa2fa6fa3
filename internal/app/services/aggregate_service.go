package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/coursereview/internal/app/repositories"
	"github.com/yigit/coursereview/internal/pkg/logger"
	"github.com/yigit/coursereview/internal/pkg/metrics"
)

// AggregateService keeps a course's average rating equal to the mean of its ratings.
type AggregateService interface {
	// Recompute reads the course's scores inside tx, stores their mean (nil when the
	// course has no ratings) and returns it. It never begins, commits or rolls back tx.
	Recompute(ctx context.Context, tx pgx.Tx, courseID int64) (*float64, error)
}

type aggregateServiceImpl struct {
	ratingRepo *repositories.RatingRepository
	courseRepo *repositories.CourseRepository
}

// NewAggregateService creates a new aggregate service instance
func NewAggregateService(ratingRepo *repositories.RatingRepository, courseRepo *repositories.CourseRepository) AggregateService {
	return &aggregateServiceImpl{
		ratingRepo: ratingRepo,
		courseRepo: courseRepo,
	}
}

func (s *aggregateServiceImpl) Recompute(ctx context.Context, tx pgx.Tx, courseID int64) (*float64, error) {
	start := time.Now()
	defer func() {
		metrics.RecomputeDuration.Observe(time.Since(start).Seconds())
	}()

	scores, err := s.ratingRepo.ListScoresForCourse(ctx, tx, courseID)
	if err != nil {
		return nil, fmt.Errorf("error reading scores for course %d: %w", courseID, err)
	}

	average := ComputeAverage(scores)
	if err := s.courseRepo.SetAverage(ctx, tx, courseID, average); err != nil {
		return nil, fmt.Errorf("error storing average for course %d: %w", courseID, err)
	}

	logger.Ctx(ctx).Debug().
		Int64("courseID", courseID).
		Int("ratings", len(scores)).
		Msg("Course average recomputed")

	return average, nil
}

// ComputeAverage returns the arithmetic mean of scores, or nil for an empty set.
func ComputeAverage(scores []float64) *float64 {
	if len(scores) == 0 {
		return nil
	}
	var sum float64
	for _, score := range scores {
		sum += score
	}
	average := sum / float64(len(scores))
	return &average
}
