package training

import (
	"fmt"
	"time"
)

// Set is a single logged set. Zero Weight / Reps / PerceivedEffort mean
// "not recorded"; RepsInReserve keeps a pointer since 0 RIR is a valid value.
type Set struct {
	ID                int       `json:"id"`
	WorkoutExerciseID int       `json:"workoutExerciseId"`
	Weight            float64   `json:"weight"`
	Reps              int       `json:"reps"`
	IsWarmup          bool      `json:"isWarmup"`
	PerceivedEffort   int       `json:"perceivedEffort"`
	RepsInReserve     *int      `json:"repsInReserve,omitempty"`
	CompletedAt       time.Time `json:"completedAt"`
}

// Volume is weight times reps, the unit of all tonnage math.
func (s Set) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// Pair identifies the (exercise, machine) scope that all records and
// baselines are keyed on. The same exercise on different equipment is
// never comparable.
type Pair struct {
	ExerciseID string `json:"exerciseId"`
	MachineID  string `json:"machineId"`
}

func (p Pair) String() string {
	if p.MachineID == "" {
		return p.ExerciseID
	}
	return fmt.Sprintf("%s@%s", p.ExerciseID, p.MachineID)
}

// WorkoutExercise is one exercise performed within one session, with its
// sets and the parent session timing denormalized onto it.
type WorkoutExercise struct {
	ID                int        `json:"id"`
	SessionID         int        `json:"sessionId"`
	ExerciseID        string     `json:"exerciseId"`
	MachineID         string     `json:"machineId"`
	SessionStartedAt  time.Time  `json:"sessionStartedAt"`
	SessionFinishedAt *time.Time `json:"sessionFinishedAt,omitempty"`
	Sets              []Set      `json:"sets"`
}

func (we WorkoutExercise) Pair() Pair {
	return Pair{ExerciseID: we.ExerciseID, MachineID: we.MachineID}
}

// Finished reports whether the parent session has a finish time. Only
// finished sessions count towards historical baselines and records.
func (we WorkoutExercise) Finished() bool {
	return we.SessionFinishedAt != nil
}

// WorkingSets returns the non-warmup sets.
func (we WorkoutExercise) WorkingSets() []Set {
	var working []Set
	for _, s := range we.Sets {
		if !s.IsWarmup {
			working = append(working, s)
		}
	}
	return working
}

// TotalVolume sums the volume of all working sets.
func (we WorkoutExercise) TotalVolume() float64 {
	var total float64
	for _, s := range we.WorkingSets() {
		total += s.Volume()
	}
	return total
}

// Session is a workout. A nil FinishedAt means the session is in progress,
// which excludes it from every historical aggregate.
type Session struct {
	ID         int        `json:"id"`
	UserID     int        `json:"userId"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

func (s Session) Finished() bool {
	return s.FinishedAt != nil
}
