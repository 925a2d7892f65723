// Package ranking scores internship listings against a free-text query.
package ranking

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/jobboard/internal/types"
)

// ErrInvalidArgument is returned when a Ranker is configured with unusable values.
var ErrInvalidArgument = errors.New("invalid argument")

// Weights are the coefficients of the four score terms.
type Weights struct {
	Skill    float64 // added per skill tag found in the query
	Location float64 // added once when the location is found in the query
	Recency  float64 // divided by the listing age in days (floored at 1)
	Lexical  float64 // multiplied by Embed(title + company)
}

// DefaultWeights returns the weights used by the job board.
func DefaultWeights() Weights {
	return Weights{
		Skill:    2.0,
		Location: 1.5,
		Recency:  5.0,
		Lexical:  0.3,
	}
}

// normalize rejects weights that could make a score negative or NaN.
func (w Weights) normalize() error {
	for _, v := range []float64{w.Skill, w.Location, w.Recency, w.Lexical} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: weights must be finite and non-negative, got %+v", ErrInvalidArgument, w)
		}
	}
	return nil
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithWeights overrides the default weights.
func WithWeights(w Weights) Option {
	return func(r *Ranker) { r.weights = w }
}

// WithClock sets the time source used for the recency term.
func WithClock(now func() time.Time) Option {
	return func(r *Ranker) { r.now = now }
}

// Ranker scores and orders listings. It holds no mutable state and is safe for concurrent use.
type Ranker struct {
	weights Weights
	now     func() time.Time
}

// NewRanker creates a Ranker with default weights and the wall clock.
func NewRanker(opts ...Option) (*Ranker, error) {
	r := &Ranker{
		weights: DefaultWeights(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.now == nil {
		return nil, fmt.Errorf("%w: clock is nil", ErrInvalidArgument)
	}
	if err := r.weights.normalize(); err != nil {
		return nil, err
	}
	return r, nil
}

// Rank scores every item against query and returns them by descending score.
// Items with equal scores keep their input order.
func (r *Ranker) Rank(query string, items []types.JobRecord) []types.ScoredJobRecord {
	now := r.now()
	q := strings.ToLower(query)

	scored := make([]types.ScoredJobRecord, 0, len(items))
	for _, item := range items {
		scored = append(scored, types.ScoredJobRecord{
			JobRecord: item,
			Score:     r.score(q, item, now),
			Reason:    reason(q, item),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Score computes the relevance of item for query at the ranker's current time.
func (r *Ranker) Score(query string, item types.JobRecord) float64 {
	return r.score(strings.ToLower(query), item, r.now())
}

// Reason explains why item matched query, or returns "" when nothing matched.
func (r *Ranker) Reason(query string, item types.JobRecord) string {
	return reason(strings.ToLower(query), item)
}

// score expects q already lower-cased.
func (r *Ranker) score(q string, item types.JobRecord, now time.Time) float64 {
	score := r.weights.Skill * float64(len(matchedSkills(q, item.Skills)))

	if locationMatches(q, item.Location) {
		score += r.weights.Location
	}

	if !item.PostedAt.IsZero() {
		days := math.Max(1, now.Sub(item.PostedAt.Time).Hours()/24)
		score += r.weights.Recency / days
	}

	score += r.weights.Lexical * Embed(item.Title+" "+item.Company)
	return score
}

func reason(q string, item types.JobRecord) string {
	if q == "" {
		return ""
	}
	if hits := matchedSkills(q, item.Skills); len(hits) > 0 {
		return "Matches skills: " + strings.Join(hits, ", ")
	}
	if locationMatches(q, item.Location) {
		return "Near your location"
	}
	return ""
}

// matchedSkills returns the skills whose lower-case form occurs anywhere in q,
// in record order and original case. Short tags over-match ("r" in "react").
func matchedSkills(q string, skills []string) []string {
	var hits []string
	for _, s := range skills {
		if s == "" {
			continue
		}
		if strings.Contains(q, strings.ToLower(s)) {
			hits = append(hits, s)
		}
	}
	return hits
}

func locationMatches(q, location string) bool {
	return location != "" && strings.Contains(q, strings.ToLower(location))
}
