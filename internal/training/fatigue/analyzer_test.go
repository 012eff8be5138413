package fatigue_test

import (
	"context"
	"testing"
	"time"

	"github.com/mkovacev/liftwatch/internal/training"
	"github.com/mkovacev/liftwatch/internal/training/fatigue"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type setSpec struct {
	weight float64
	reps   int
	rpe    int
}

func exerciseWithSets(id, sessionID int, finishedAt *time.Time, sets ...setSpec) training.WorkoutExercise {
	we := training.WorkoutExercise{
		ID:                id,
		SessionID:         sessionID,
		ExerciseID:        "squat",
		MachineID:         "rack-2",
		SessionStartedAt:  time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
		SessionFinishedAt: finishedAt,
	}
	if finishedAt != nil {
		we.SessionStartedAt = finishedAt.Add(-time.Hour)
	}
	for i, s := range sets {
		we.Sets = append(we.Sets, training.Set{
			ID:              id*100 + i,
			Weight:          s.weight,
			Reps:            s.reps,
			PerceivedEffort: s.rpe,
		})
	}
	return we
}

func TestCompare_VolumeDropIsFatigued(t *testing.T) {
	// current session volume 800 vs a baseline averaging 1000, reps at
	// baseline average, no RPE data
	current := exerciseWithSets(99, 990, nil, setSpec{weight: 100, reps: 8})

	day1 := time.Date(2026, 2, 20, 19, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 3)
	baseline := []training.WorkoutExercise{
		exerciseWithSets(1, 10, &day1, setSpec{weight: 125, reps: 8}),
		exerciseWithSets(2, 20, &day2, setSpec{weight: 125, reps: 8}),
	}

	assessment := fatigue.Compare(current, baseline, fatigue.DefaultConfig())
	require.NotNil(t, assessment)

	assert.InDelta(t, -0.20, assessment.VolumeDelta, 0.0001)
	assert.InDelta(t, 0, assessment.RepsDelta, 0.0001)
	assert.InDelta(t, 0, assessment.RPEAdjustment, 0.0001)
	assert.InDelta(t, -0.14, assessment.CompositeDelta, 0.0001)
	assert.Equal(t, fatigue.StatusFatigued, assessment.Status)
	assert.Equal(t, 2, assessment.BaselineSessions)
	assert.Contains(t, assessment.Factors, fatigue.FactorVolumeLow)
}

func TestCompare_Fresh(t *testing.T) {
	current := exerciseWithSets(99, 990, nil, setSpec{weight: 110, reps: 8})

	day := time.Date(2026, 2, 20, 19, 0, 0, 0, time.UTC)
	baseline := []training.WorkoutExercise{
		exerciseWithSets(1, 10, &day, setSpec{weight: 100, reps: 8}),
	}

	assessment := fatigue.Compare(current, baseline, fatigue.DefaultConfig())
	require.NotNil(t, assessment)
	assert.InDelta(t, 0.10, assessment.VolumeDelta, 0.0001)
	assert.Equal(t, fatigue.StatusFresh, assessment.Status)
	assert.Contains(t, assessment.Factors, fatigue.FactorVolumeHigh)
}

func TestCompare_VeryFatiguedWithRPE(t *testing.T) {
	// volume down 20%, reps down 25%, and everything felt 2 points harder
	current := exerciseWithSets(99, 990, nil, setSpec{weight: 133.4, reps: 6, rpe: 9})

	day := time.Date(2026, 2, 20, 19, 0, 0, 0, time.UTC)
	baseline := []training.WorkoutExercise{
		exerciseWithSets(1, 10, &day, setSpec{weight: 125, reps: 8, rpe: 7}),
	}

	assessment := fatigue.Compare(current, baseline, fatigue.DefaultConfig())
	require.NotNil(t, assessment)
	assert.Equal(t, fatigue.StatusVeryFatigued, assessment.Status)
	assert.InDelta(t, -0.2, assessment.RPEAdjustment, 0.0001)
	assert.Contains(t, assessment.Factors, fatigue.FactorEffortHigh)
	assert.Contains(t, assessment.Factors, fatigue.FactorRepsLow)
}

func TestAnalyzer_Assess(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	analyzer := fatigue.NewAnalyzer(repoMock)

	current := exerciseWithSets(99, 990, nil, setSpec{weight: 100, reps: 8})

	day := time.Date(2026, 2, 20, 19, 0, 0, 0, time.UTC)
	repoMock.EXPECT().
		ListExercises(gomock.Any(), 7, gomock.Any()).
		Return([]training.WorkoutExercise{
			exerciseWithSets(1, 10, &day, setSpec{weight: 100, reps: 8}),
		}, nil)

	assessment, err := analyzer.Assess(context.Background(), 7, current)
	require.NoError(t, err)
	require.NotNil(t, assessment)
	assert.Equal(t, fatigue.StatusNormal, assessment.Status)
	assert.InDelta(t, 0, assessment.CompositeDelta, 0.0001)
}

func TestAnalyzer_Assess_NoWorkingSets(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	analyzer := fatigue.NewAnalyzer(repoMock)

	current := exerciseWithSets(99, 990, nil)
	current.Sets = []training.Set{{Weight: 60, Reps: 10, IsWarmup: true}}

	assessment, err := analyzer.Assess(context.Background(), 7, current)
	require.NoError(t, err)
	assert.Nil(t, assessment)
}

func TestAnalyzer_Assess_EmptyBaseline(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	analyzer := fatigue.NewAnalyzer(repoMock)

	current := exerciseWithSets(99, 990, nil, setSpec{weight: 100, reps: 8})

	repoMock.EXPECT().
		ListExercises(gomock.Any(), 7, gomock.Any()).
		Return([]training.WorkoutExercise{}, nil)

	assessment, err := analyzer.Assess(context.Background(), 7, current)
	require.NoError(t, err)
	assert.Nil(t, assessment)
}

func TestAnalyzer_Assess_BaselineCappedToMostRecentSessions(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	analyzer := fatigue.NewAnalyzer(repoMock)

	current := exerciseWithSets(99, 990, nil, setSpec{weight: 100, reps: 8})

	// 12 baseline sessions; the two oldest (with absurd volumes) must be
	// dropped by the 10 session cap
	var others []training.WorkoutExercise
	base := time.Date(2026, 2, 1, 19, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		day := base.AddDate(0, 0, i*2)
		weight := 100.0
		if i < 2 {
			weight = 1000
		}
		others = append(others, exerciseWithSets(i+1, (i+1)*10, &day, setSpec{weight: weight, reps: 8}))
	}

	repoMock.EXPECT().
		ListExercises(gomock.Any(), 7, gomock.Any()).
		Return(others, nil)

	assessment, err := analyzer.Assess(context.Background(), 7, current)
	require.NoError(t, err)
	require.NotNil(t, assessment)
	assert.Equal(t, 10, assessment.BaselineSessions)
	// baseline average is 800 per session, not skewed by the dropped ones
	assert.InDelta(t, 800.0, assessment.Baseline.TotalVolume, 0.0001)
	assert.InDelta(t, 0, assessment.CompositeDelta, 0.0001)
}
