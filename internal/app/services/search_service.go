package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/yigit/coursereview/internal/app/models"
	"github.com/yigit/coursereview/internal/app/repositories"
	"github.com/yigit/coursereview/internal/db"
	"github.com/yigit/coursereview/internal/pkg/apperrors"
	"github.com/yigit/coursereview/internal/pkg/helpers"
	"github.com/yigit/coursereview/internal/pkg/logger"
	"github.com/yigit/coursereview/internal/pkg/metrics"
)

// SearchQuery holds the optional search terms. Nil and blank terms are absent.
type SearchQuery struct {
	Professor    *string
	CourseNumber *string
	Department   *string
}

// SearchOutcome classifies a resolved search.
type SearchOutcome string

const (
	SearchNoResults SearchOutcome = "no_results"
	SearchResolved  SearchOutcome = "resolved"
	SearchAmbiguous SearchOutcome = "ambiguous"
)

// SearchResult is NoResults, Resolved (ProfessorID set) or Ambiguous (Matches set,
// ordered by professor ID).
type SearchResult struct {
	Outcome     SearchOutcome
	ProfessorID int64
	Matches     []*models.ProfessorMatch
}

// ResolveMatches classifies the matches of a search. It does not modify matches.
func ResolveMatches(matches []*models.ProfessorMatch) *SearchResult {
	switch len(matches) {
	case 0:
		return &SearchResult{Outcome: SearchNoResults}
	case 1:
		return &SearchResult{Outcome: SearchResolved, ProfessorID: matches[0].ProfessorID}
	}

	sorted := make([]*models.ProfessorMatch, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ProfessorID < sorted[j].ProfessorID
	})
	return &SearchResult{Outcome: SearchAmbiguous, Matches: sorted}
}

// SearchService defines the interface for professor search
type SearchService interface {
	Search(ctx context.Context, query SearchQuery) (*SearchResult, error)
}

type searchServiceImpl struct {
	db            db.Querier
	professorRepo *repositories.ProfessorRepository
}

// NewSearchService creates a new search service instance
func NewSearchService(q db.Querier, professorRepo *repositories.ProfessorRepository) SearchService {
	return &searchServiceImpl{
		db:            q,
		professorRepo: professorRepo,
	}
}

// Search matches present terms case-insensitively as substrings. When both a name and a
// course number are given, a professor must match the name and teach a matching course.
func (s *searchServiceImpl) Search(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	var filter repositories.FindProfessorsFilter
	filter.Name, _ = helpers.OptionalTerm(query.Professor)
	filter.CourseNumber, _ = helpers.OptionalTerm(query.CourseNumber)
	filter.Department, _ = helpers.OptionalTerm(query.Department)

	if filter.IsEmpty() {
		metrics.Searches.WithLabelValues("invalid").Inc()
		return nil, apperrors.NewValidationError("professor", "at least one of professor, courseNumber or department is required")
	}

	matches, err := s.professorRepo.Find(ctx, s.db, filter)
	if err != nil {
		metrics.Searches.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, fmt.Errorf("error searching professors: %w", err)
	}

	result := ResolveMatches(matches)
	metrics.Searches.WithLabelValues(string(result.Outcome)).Inc()
	logger.Ctx(ctx).Debug().
		Str("outcome", string(result.Outcome)).
		Int("matches", len(matches)).
		Msg("Search resolved")

	return result, nil
}
