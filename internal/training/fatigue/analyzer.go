// Package fatigue compares a current session's performance for one
// (exercise, machine) pair against a rolling baseline of recent sessions.
package fatigue

import (
	"context"
	"sort"
	"time"

	"github.com/mkovacev/liftwatch/internal/telemetry/tracing"
	"github.com/mkovacev/liftwatch/internal/training"

	"go.opentelemetry.io/otel/attribute"
)

type Status string

const (
	StatusFresh        Status = "fresh"
	StatusNormal       Status = "normal"
	StatusFatigued     Status = "fatigued"
	StatusVeryFatigued Status = "very_fatigued"
)

type Factor string

const (
	FactorVolumeLow  Factor = "volume_low"
	FactorVolumeHigh Factor = "volume_high"
	FactorRepsLow    Factor = "reps_low"
	FactorRepsHigh   Factor = "reps_high"
	FactorEffortLow  Factor = "effort_low"
	FactorEffortHigh Factor = "effort_high"
)

// Config holds the product-tuned comparison constants. The thresholds have
// no derivation, they were tuned on real training logs; keep them
// overridable instead of re-deriving.
type Config struct {
	BaselineSessions      int
	BaselineWindow        time.Duration
	VolumeWeight          float64
	RepsWeight            float64
	FreshThreshold        float64
	FatiguedThreshold     float64
	VeryFatiguedThreshold float64
	FactorRatioDeviation  float64
	FactorRPEDeviation    float64
}

func DefaultConfig() Config {
	return Config{
		BaselineSessions:      10,
		BaselineWindow:        60 * 24 * time.Hour,
		VolumeWeight:          0.7,
		RepsWeight:            0.3,
		FreshThreshold:        0.05,
		FatiguedThreshold:     -0.10,
		VeryFatiguedThreshold: -0.20,
		FactorRatioDeviation:  0.10,
		FactorRPEDeviation:    1.0,
	}
}

// Performance aggregates one side of the comparison. Volume is the total
// for the current session but the per-session average for the baseline;
// reps and RPE are averaged over the pooled working sets.
type Performance struct {
	TotalVolume float64 `json:"totalVolume"`
	AvgReps     float64 `json:"avgReps"`
	AvgRPE      float64 `json:"avgRpe,omitempty"`
}

type Assessment struct {
	Pair             training.Pair `json:"pair"`
	Status           Status        `json:"status"`
	CompositeDelta   float64       `json:"compositeDelta"`
	VolumeDelta      float64       `json:"volumeDelta"`
	RepsDelta        float64       `json:"repsDelta"`
	RPEAdjustment    float64       `json:"rpeAdjustment"`
	Current          Performance   `json:"current"`
	Baseline         Performance   `json:"baseline"`
	BaselineSessions int           `json:"baselineSessions"`
	Factors          []Factor      `json:"factors,omitempty"`
}

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=fatigue_test

type exercisesRepo interface {
	ListExercises(ctx context.Context, userID int, params training.ExerciseParams) ([]training.WorkoutExercise, error)
}

type Analyzer struct {
	repo exercisesRepo
	cfg  Config
	now  func() time.Time
}

func NewAnalyzer(repo exercisesRepo) *Analyzer {
	return NewAnalyzerWithConfig(repo, DefaultConfig())
}

func NewAnalyzerWithConfig(repo exercisesRepo, cfg Config) *Analyzer {
	return &Analyzer{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

// Assess compares the current (typically in-progress) workout exercise
// against the user's baseline for the same pair: up to BaselineSessions
// most recent other finished sessions within BaselineWindow. Returns nil
// when the current session has no working sets or no baseline exists.
func (a *Analyzer) Assess(ctx context.Context, userID int, current training.WorkoutExercise) (_ *Assessment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.fatigue.assess")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("pair", current.Pair().String()))

	if len(current.WorkingSets()) == 0 {
		return nil, nil
	}

	windowStart := a.now().Add(-a.cfg.BaselineWindow)
	others, err := a.repo.ListExercises(ctx, userID, training.ExerciseParams{
		ExerciseID:               current.ExerciseID,
		MachineID:                current.MachineID,
		From:                     &windowStart,
		FinishedOnly:             true,
		ExcludeWorkoutExerciseID: current.ID,
	})
	if err != nil {
		return nil, err
	}

	baseline := a.trimBaseline(others, current.SessionID)
	if len(baseline) == 0 {
		return nil, nil
	}

	assessment := Compare(current, baseline, a.cfg)
	span.SetAttributes(attribute.String("status", string(assessment.Status)))
	return assessment, nil
}

// trimBaseline drops the current session's occurrences and keeps the
// BaselineSessions most recent sessions.
func (a *Analyzer) trimBaseline(others []training.WorkoutExercise, currentSessionID int) []training.WorkoutExercise {
	var baseline []training.WorkoutExercise
	for _, we := range others {
		if we.SessionID == currentSessionID || !we.Finished() {
			continue
		}
		baseline = append(baseline, we)
	}

	sessionIDs := make(map[int]struct{})
	for _, we := range baseline {
		sessionIDs[we.SessionID] = struct{}{}
	}
	if len(sessionIDs) <= a.cfg.BaselineSessions {
		return baseline
	}

	// most recent sessions win
	sort.SliceStable(baseline, func(i, j int) bool {
		return baseline[i].SessionFinishedAt.After(*baseline[j].SessionFinishedAt)
	})
	kept := make(map[int]struct{})
	var trimmed []training.WorkoutExercise
	for _, we := range baseline {
		if _, ok := kept[we.SessionID]; !ok {
			if len(kept) == a.cfg.BaselineSessions {
				continue
			}
			kept[we.SessionID] = struct{}{}
		}
		trimmed = append(trimmed, we)
	}
	return trimmed
}

// Compare is the pure comparison core. The baseline volume is averaged
// per session while reps and RPE are averaged over the pooled working
// sets of all baseline sessions.
func Compare(current training.WorkoutExercise, baseline []training.WorkoutExercise, cfg Config) *Assessment {
	currentPerf := sessionPerformance(current.WorkingSets())

	sessionVolumes := make(map[int]float64)
	var pooled []training.Set
	for _, we := range baseline {
		for _, set := range we.WorkingSets() {
			sessionVolumes[we.SessionID] += set.Volume()
			pooled = append(pooled, set)
		}
	}
	if len(pooled) == 0 {
		return nil
	}

	var totalVolume float64
	for _, v := range sessionVolumes {
		totalVolume += v
	}
	baselinePerf := sessionPerformance(pooled)
	baselinePerf.TotalVolume = totalVolume / float64(len(sessionVolumes))

	volumeDelta := relativeDelta(currentPerf.TotalVolume, baselinePerf.TotalVolume)
	repsDelta := relativeDelta(currentPerf.AvgReps, baselinePerf.AvgReps)

	var rpeAdjustment float64
	if currentPerf.AvgRPE > 0 && baselinePerf.AvgRPE > 0 {
		// higher RPE means the same work felt harder
		rpeAdjustment = -(currentPerf.AvgRPE - baselinePerf.AvgRPE) / 10
	}

	composite := cfg.VolumeWeight*volumeDelta + cfg.RepsWeight*repsDelta + rpeAdjustment

	status := StatusNormal
	switch {
	case composite >= cfg.FreshThreshold:
		status = StatusFresh
	case composite <= cfg.VeryFatiguedThreshold:
		status = StatusVeryFatigued
	case composite <= cfg.FatiguedThreshold:
		status = StatusFatigued
	}

	return &Assessment{
		Pair:             current.Pair(),
		Status:           status,
		CompositeDelta:   composite,
		VolumeDelta:      volumeDelta,
		RepsDelta:        repsDelta,
		RPEAdjustment:    rpeAdjustment,
		Current:          currentPerf,
		Baseline:         baselinePerf,
		BaselineSessions: len(sessionVolumes),
		Factors:          factors(currentPerf, baselinePerf, cfg),
	}
}

func factors(current, baseline Performance, cfg Config) []Factor {
	var out []Factor

	if baseline.TotalVolume > 0 {
		switch delta := relativeDelta(current.TotalVolume, baseline.TotalVolume); {
		case delta <= -cfg.FactorRatioDeviation:
			out = append(out, FactorVolumeLow)
		case delta >= cfg.FactorRatioDeviation:
			out = append(out, FactorVolumeHigh)
		}
	}
	if baseline.AvgReps > 0 {
		switch delta := relativeDelta(current.AvgReps, baseline.AvgReps); {
		case delta <= -cfg.FactorRatioDeviation:
			out = append(out, FactorRepsLow)
		case delta >= cfg.FactorRatioDeviation:
			out = append(out, FactorRepsHigh)
		}
	}
	if current.AvgRPE > 0 && baseline.AvgRPE > 0 {
		switch diff := current.AvgRPE - baseline.AvgRPE; {
		case diff >= cfg.FactorRPEDeviation:
			out = append(out, FactorEffortHigh)
		case diff <= -cfg.FactorRPEDeviation:
			out = append(out, FactorEffortLow)
		}
	}
	return out
}

func sessionPerformance(sets []training.Set) Performance {
	var perf Performance
	var repsCount, rpeCount int
	var repsSum, rpeSum float64
	for _, set := range sets {
		perf.TotalVolume += set.Volume()
		if set.Reps > 0 {
			repsSum += float64(set.Reps)
			repsCount++
		}
		if set.PerceivedEffort > 0 {
			rpeSum += float64(set.PerceivedEffort)
			rpeCount++
		}
	}
	if repsCount > 0 {
		perf.AvgReps = repsSum / float64(repsCount)
	}
	if rpeCount > 0 {
		perf.AvgRPE = rpeSum / float64(rpeCount)
	}
	return perf
}

func relativeDelta(current, baseline float64) float64 {
	if baseline == 0 {
		return 0
	}
	return (current - baseline) / baseline
}
