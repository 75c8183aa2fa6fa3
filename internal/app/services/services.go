package services

import (
	"context"

	"github.com/yigit/coursereview/internal/config"
	"github.com/yigit/coursereview/internal/db"
)

// Services defined in this package:
// - AggregateService: keeps course averages consistent with their ratings
// - ReviewService: submits and deletes rating+comment pairs
// - SearchService: resolves free-text queries to professors
// - ProfessorService: professor and course catalogue

// Transactor runs a function inside a database transaction. *db.PostgresDB implements it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

// Store is the database handle the services need: transactions for writes and a
// plain querier for reads.
type Store interface {
	Transactor
	Querier() db.Querier
}

// ReviewRules are the submission limits. Lengths are counted in characters after
// trimming surrounding whitespace.
type ReviewRules struct {
	MinScore         float64
	MaxScore         float64
	MinCommentLength int
	MaxCommentLength int
}

// DefaultReviewRules returns the limits used when nothing is configured.
func DefaultReviewRules() ReviewRules {
	return ReviewRules{
		MinScore:         1.0,
		MaxScore:         5.0,
		MinCommentLength: config.DefaultMinCommentLength,
		MaxCommentLength: 5000,
	}
}

// ReviewRulesFromConfig reads the review section of cfg.
func ReviewRulesFromConfig(cfg *config.Config) ReviewRules {
	return ReviewRules{
		MinScore:         cfg.Review.MinScore,
		MaxScore:         cfg.Review.MaxScore,
		MinCommentLength: cfg.Review.MinCommentLength,
		MaxCommentLength: cfg.Review.MaxCommentLength,
	}
}
