// Package readiness determines whether rep-target consistency for an
// (exercise, machine) pair justifies suggesting a load increase.
package readiness

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mkovacev/liftwatch/internal/telemetry/tracing"
	"github.com/mkovacev/liftwatch/internal/training"

	"go.opentelemetry.io/otel/attribute"
)

// Config holds the product-tuned constants for the progression checks.
type Config struct {
	Window             time.Duration
	MaxSessions        int
	MinSessions        int
	RepRangeSpread     int
	MinConsistencyRate float64
	// DowntrendRatio suppresses the suggestion when the most recent
	// session's average weight fell below this fraction of the oldest's
	DowntrendRatio float64
	// RecentBumpRatio suppresses the suggestion when the last two
	// sessions already increased the load by more than this fraction
	RecentBumpRatio float64
}

func DefaultConfig() Config {
	return Config{
		Window:             30 * 24 * time.Hour,
		MaxSessions:        10,
		MinSessions:        3,
		RepRangeSpread:     2,
		MinConsistencyRate: 0.75,
		DowntrendRatio:     0.95,
		RecentBumpRatio:    0.025,
	}
}

// Result describes a pair the user is ready to progress on.
type Result struct {
	Pair             training.Pair `json:"pair"`
	SessionsAnalyzed int           `json:"sessionsAnalyzed"`
	AvgWeight        float64       `json:"avgWeight"`
	AvgReps          float64       `json:"avgReps"`
	RepRangeLow      int           `json:"repRangeLow"`
	RepRangeHigh     int           `json:"repRangeHigh"`
	ConsistencyRate  float64       `json:"consistencyRate"`
	Message          string        `json:"message"`
}

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=readiness_test

type exercisesRepo interface {
	ListExercises(ctx context.Context, userID int, params training.ExerciseParams) ([]training.WorkoutExercise, error)
}

type Checker struct {
	repo exercisesRepo
	cfg  Config
	now  func() time.Time
}

func NewChecker(repo exercisesRepo) *Checker {
	return NewCheckerWithConfig(repo, DefaultConfig())
}

func NewCheckerWithConfig(repo exercisesRepo, cfg Config) *Checker {
	return &Checker{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

// Check analyzes the pair's recent finished sessions and returns a
// readiness result when the user consistently hits the detected rep
// target and is not already progressing or detraining. Insufficient data
// or a failed guard yields nil, not an error.
func (c *Checker) Check(ctx context.Context, userID int, pair training.Pair) (_ *Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "checker.readiness.check")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("pair", pair.String()))

	windowStart := c.now().Add(-c.cfg.Window)
	exs, err := c.repo.ListExercises(ctx, userID, training.ExerciseParams{
		ExerciseID:   pair.ExerciseID,
		MachineID:    pair.MachineID,
		From:         &windowStart,
		FinishedOnly: true,
	})
	if err != nil {
		return nil, err
	}

	sessions := groupBySession(exs)
	if len(sessions) > c.cfg.MaxSessions {
		sessions = sessions[len(sessions)-c.cfg.MaxSessions:]
	}
	if len(sessions) < c.cfg.MinSessions {
		return nil, nil
	}

	var allSets []training.Set
	for _, s := range sessions {
		allSets = append(allSets, s.sets...)
	}

	targetReps, ok := repMode(allSets)
	if !ok {
		return nil, nil
	}
	rangeLow := targetReps - c.cfg.RepRangeSpread
	rangeHigh := targetReps + c.cfg.RepRangeSpread

	var hits int
	for _, set := range allSets {
		if set.Reps >= rangeLow {
			hits++
		}
	}
	consistency := float64(hits) / float64(len(allSets))
	if consistency < c.cfg.MinConsistencyRate {
		return nil, nil
	}

	// never tell a user to progress while they are detraining
	oldest := sessions[0]
	newest := sessions[len(sessions)-1]
	if avgWeight(newest.sets) < c.cfg.DowntrendRatio*avgWeight(oldest.sets) {
		return nil, nil
	}

	// avoid nagging right after a real increase
	if len(sessions) > 2 {
		recent := sessions[len(sessions)-2:]
		older := sessions[:len(sessions)-2]
		var recentSets, olderSets []training.Set
		for _, s := range recent {
			recentSets = append(recentSets, s.sets...)
		}
		for _, s := range older {
			olderSets = append(olderSets, s.sets...)
		}
		olderAvg := avgWeight(olderSets)
		if olderAvg > 0 && avgWeight(recentSets) > (1+c.cfg.RecentBumpRatio)*olderAvg {
			return nil, nil
		}
	}

	result := &Result{
		Pair:             pair,
		SessionsAnalyzed: len(sessions),
		AvgWeight:        avgWeight(allSets),
		AvgReps:          avgReps(allSets),
		RepRangeLow:      rangeLow,
		RepRangeHigh:     rangeHigh,
		ConsistencyRate:  consistency,
	}
	result.Message = fmt.Sprintf(
		"You hit %d-%d reps in %.0f%% of your last %d %s sessions. Time to add weight.",
		rangeLow, rangeHigh, consistency*100, len(sessions), pair.ExerciseID,
	)
	return result, nil
}

type sessionSets struct {
	sessionID  int
	finishedAt time.Time
	sets       []training.Set
}

// groupBySession buckets working sets per finished session, oldest first.
func groupBySession(exs []training.WorkoutExercise) []sessionSets {
	byID := make(map[int]*sessionSets)
	for _, we := range exs {
		if !we.Finished() {
			continue
		}
		working := we.WorkingSets()
		if len(working) == 0 {
			continue
		}
		s, ok := byID[we.SessionID]
		if !ok {
			s = &sessionSets{
				sessionID:  we.SessionID,
				finishedAt: *we.SessionFinishedAt,
			}
			byID[we.SessionID] = s
		}
		s.sets = append(s.sets, working...)
	}

	sessions := make([]sessionSets, 0, len(byID))
	for _, s := range byID {
		sessions = append(sessions, *s)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].finishedAt.Before(sessions[j].finishedAt)
	})
	return sessions
}

// repMode returns the statistical mode of the recorded rep counts; ties
// break towards the lower rep count for determinism.
func repMode(sets []training.Set) (int, bool) {
	counts := make(map[int]int)
	for _, set := range sets {
		if set.Reps > 0 {
			counts[set.Reps]++
		}
	}
	if len(counts) == 0 {
		return 0, false
	}

	mode, best := 0, 0
	for reps, count := range counts {
		if count > best || (count == best && reps < mode) {
			mode, best = reps, count
		}
	}
	return mode, true
}

func avgWeight(sets []training.Set) float64 {
	if len(sets) == 0 {
		return 0
	}
	var sum float64
	for _, set := range sets {
		sum += set.Weight
	}
	return sum / float64(len(sets))
}

func avgReps(sets []training.Set) float64 {
	if len(sets) == 0 {
		return 0
	}
	var sum float64
	for _, set := range sets {
		sum += float64(set.Reps)
	}
	return sum / float64(len(sets))
}
