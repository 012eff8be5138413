// Package prs computes personal records over (exercise, machine) scoped
// set collections: snapshot maxima, a dated PR timeline, and real-time
// single-set checks.
package prs

import (
	"context"
	"sort"
	"time"

	"github.com/mkovacev/liftwatch/internal/telemetry/tracing"
	"github.com/mkovacev/liftwatch/internal/training"
	"github.com/mkovacev/liftwatch/internal/training/onerm"

	"go.opentelemetry.io/otel/attribute"
)

const (
	// DefaultRecordLimit caps the records returned for dashboard views.
	DefaultRecordLimit = 10
	// DefaultTimelineLimit caps the number of timeline events returned.
	DefaultTimelineLimit = 50
)

// Record is a single best value with the date it was achieved.
type Record struct {
	Value             float64   `json:"value"`
	Reps              int       `json:"reps,omitempty"`
	Date              time.Time `json:"date"`
	WorkoutExerciseID int       `json:"workoutExerciseId"`
}

// Records are the snapshot maxima actually present in a set collection
// for one (exercise, machine) pair.
type Records struct {
	Pair              training.Pair `json:"pair"`
	BestSetWeight     *Record       `json:"bestSetWeight,omitempty"`
	BestSetVolume     *Record       `json:"bestSetVolume,omitempty"`
	BestSessionVolume *Record       `json:"bestSessionVolume,omitempty"`
	BestEstimated1RM  *Record       `json:"bestEstimated1Rm,omitempty"`
}

type EventKind string

const (
	EventWeightPR        EventKind = "weight_pr"
	EventSessionVolumePR EventKind = "session_volume_pr"
)

// Event is one personal record on the timeline, dated to the session
// that achieved it.
type Event struct {
	Kind      EventKind     `json:"kind"`
	Pair      training.Pair `json:"pair"`
	Value     float64       `json:"value"`
	Reps      int           `json:"reps,omitempty"`
	Date      time.Time     `json:"date"`
	SessionID int           `json:"sessionId"`
}

// CalculateAll reports the best single-set weight, best single-set volume,
// best session volume and best estimated 1RM present in the given
// collection of one pair's workout exercises. No historical baseline is
// involved, so this is the "snapshot" mode. Returns nil when there are no
// working sets with positive weight.
func CalculateAll(exs []training.WorkoutExercise) *Records {
	if len(exs) == 0 {
		return nil
	}

	records := &Records{Pair: exs[0].Pair()}

	sessionVolumes := make(map[int]float64)
	sessionDates := make(map[int]time.Time)
	sessionExerciseIDs := make(map[int]int)

	for _, we := range exs {
		for _, set := range we.WorkingSets() {
			if set.Weight <= 0 {
				continue
			}

			date := exerciseDate(we)

			if records.BestSetWeight == nil || set.Weight > records.BestSetWeight.Value {
				records.BestSetWeight = &Record{
					Value:             set.Weight,
					Reps:              set.Reps,
					Date:              date,
					WorkoutExerciseID: we.ID,
				}
			}

			if volume := set.Volume(); volume > 0 &&
				(records.BestSetVolume == nil || volume > records.BestSetVolume.Value) {
				records.BestSetVolume = &Record{
					Value:             volume,
					Reps:              set.Reps,
					Date:              date,
					WorkoutExerciseID: we.ID,
				}
			}

			if estimated, ok := onerm.Estimate(set.Weight, set.Reps); ok {
				if records.BestEstimated1RM == nil || estimated > records.BestEstimated1RM.Value {
					records.BestEstimated1RM = &Record{
						Value:             estimated,
						Reps:              set.Reps,
						Date:              date,
						WorkoutExerciseID: we.ID,
					}
				}
			}

			sessionVolumes[we.SessionID] += set.Volume()
			if _, ok := sessionDates[we.SessionID]; !ok {
				sessionDates[we.SessionID] = date
				sessionExerciseIDs[we.SessionID] = we.ID
			}
		}
	}

	for sessionID, volume := range sessionVolumes {
		if volume <= 0 {
			continue
		}
		if records.BestSessionVolume == nil || volume > records.BestSessionVolume.Value {
			records.BestSessionVolume = &Record{
				Value:             volume,
				Date:              sessionDates[sessionID],
				WorkoutExerciseID: sessionExerciseIDs[sessionID],
			}
		}
	}

	if records.BestSetWeight == nil && records.BestSessionVolume == nil {
		return nil
	}
	return records
}

// CalculateTimeline walks one pair's finished sessions in ascending
// finish-date order and emits weight and session-volume PR events within
// the window starting at since. Bests are seeded from the sessions
// strictly before since, and a beat only counts when the beaten best was
// itself a real, earlier record: a user's first logged weight is not
// reported as a PR. The result is date-sorted and truncated to the most
// recent limit entries.
func CalculateTimeline(exs []training.WorkoutExercise, since time.Time, limit int) []Event {
	if limit <= 0 {
		limit = DefaultTimelineLimit
	}

	type sessionGroup struct {
		id       int
		date     time.Time
		sets     []training.Set
		volume   float64
		exercise training.WorkoutExercise
	}

	groups := make(map[int]*sessionGroup)
	for _, we := range exs {
		if !we.Finished() {
			continue
		}
		g, ok := groups[we.SessionID]
		if !ok {
			g = &sessionGroup{
				id:       we.SessionID,
				date:     *we.SessionFinishedAt,
				exercise: we,
			}
			groups[we.SessionID] = g
		}
		for _, set := range we.WorkingSets() {
			if set.Weight <= 0 {
				continue
			}
			g.sets = append(g.sets, set)
			g.volume += set.Volume()
		}
	}

	ordered := make([]*sessionGroup, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].date.Before(ordered[j].date)
	})

	// phase one: seed bests from the sessions strictly before the cutoff
	var bestWeight, bestVolume float64
	windowStart := len(ordered)
	for i, g := range ordered {
		if !g.date.Before(since) {
			windowStart = i
			break
		}
		for _, set := range g.sets {
			if set.Weight > bestWeight {
				bestWeight = set.Weight
			}
		}
		if g.volume > bestVolume {
			bestVolume = g.volume
		}
	}

	// phase two: only beats of a real prior record count
	var events []Event
	for _, g := range ordered[windowStart:] {
		for _, set := range g.sets {
			if bestWeight > 0 && set.Weight > bestWeight {
				events = append(events, Event{
					Kind:      EventWeightPR,
					Pair:      g.exercise.Pair(),
					Value:     set.Weight,
					Reps:      set.Reps,
					Date:      g.date,
					SessionID: g.id,
				})
			}
			if set.Weight > bestWeight {
				bestWeight = set.Weight
			}
		}

		if bestVolume > 0 && g.volume > bestVolume {
			events = append(events, Event{
				Kind:      EventSessionVolumePR,
				Pair:      g.exercise.Pair(),
				Value:     g.volume,
				Date:      g.date,
				SessionID: g.id,
			})
		}
		if g.volume > bestVolume {
			bestVolume = g.volume
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events
}

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=prs_test

type exercisesRepo interface {
	ListExercises(ctx context.Context, userID int, params training.ExerciseParams) ([]training.WorkoutExercise, error)
}

// Analyzer answers real-time PR checks against the store.
type Analyzer struct {
	repo exercisesRepo
}

func NewAnalyzer(repo exercisesRepo) *Analyzer {
	return &Analyzer{
		repo: repo,
	}
}

// IsWeightPR reports whether the given set of the given workout exercise
// beats the user's best weight over all other, finished, non-warmup sets
// for the same pair. Without a prior record it is false, regardless of
// the set's weight.
func (a *Analyzer) IsWeightPR(ctx context.Context, userID int, we training.WorkoutExercise, set training.Set) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.prs.isWeightPR")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("pair", we.Pair().String()))

	if set.IsWarmup || set.Weight <= 0 || set.Reps <= 0 {
		return false, nil
	}

	others, err := a.repo.ListExercises(ctx, userID, training.ExerciseParams{
		ExerciseID:               we.ExerciseID,
		MachineID:                we.MachineID,
		FinishedOnly:             true,
		ExcludeWorkoutExerciseID: we.ID,
	})
	if err != nil {
		return false, err
	}

	var previousBest float64
	for _, other := range others {
		for _, s := range other.WorkingSets() {
			if s.Weight > previousBest {
				previousBest = s.Weight
			}
		}
	}
	if previousBest == 0 {
		// a first occurrence is not a PR
		return false, nil
	}
	return set.Weight > previousBest, nil
}

// IsVolumePR reports whether this session's total working volume for the
// pair beats the best total volume of all other finished sessions for
// that pair. False when no prior session exists.
func (a *Analyzer) IsVolumePR(ctx context.Context, userID int, we training.WorkoutExercise) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.prs.isVolumePR")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("pair", we.Pair().String()))

	currentVolume := we.TotalVolume()
	if currentVolume <= 0 {
		return false, nil
	}

	others, err := a.repo.ListExercises(ctx, userID, training.ExerciseParams{
		ExerciseID:               we.ExerciseID,
		MachineID:                we.MachineID,
		FinishedOnly:             true,
		ExcludeWorkoutExerciseID: we.ID,
	})
	if err != nil {
		return false, err
	}

	sessionVolumes := make(map[int]float64)
	for _, other := range others {
		if other.SessionID == we.SessionID {
			continue
		}
		sessionVolumes[other.SessionID] += other.TotalVolume()
	}

	var previousBest float64
	for _, volume := range sessionVolumes {
		if volume > previousBest {
			previousBest = volume
		}
	}
	if previousBest == 0 {
		return false, nil
	}
	return currentVolume > previousBest, nil
}

func exerciseDate(we training.WorkoutExercise) time.Time {
	if we.SessionFinishedAt != nil {
		return *we.SessionFinishedAt
	}
	return we.SessionStartedAt
}
