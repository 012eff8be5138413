package training

import (
	"context"
	"fmt"
	"time"

	"github.com/mkovacev/liftwatch/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

// ExerciseParams filters the workout exercises (and their sets) to load.
// Empty / nil fields match everything.
type ExerciseParams struct {
	ExerciseID string
	MachineID  string
	From       *time.Time
	To         *time.Time
	// FinishedOnly keeps only exercises from sessions with a finish time
	FinishedOnly bool
	// ExcludeWorkoutExerciseID leaves out one exercise occurrence, used by
	// the "all other records" PR checks; 0 excludes nothing
	ExcludeWorkoutExerciseID int
}

type SessionParams struct {
	From         *time.Time
	To           *time.Time
	FinishedOnly bool
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// ListExercises returns the user's workout exercises matching the params,
// with their sets attached, ordered by session finish date ascending
// (in-progress sessions last).
func (r *Repo) ListExercises(ctx context.Context, userID int, params ExerciseParams) (_ []WorkoutExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.listExercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user_id", userID))
	span.SetAttributes(attribute.String("exercise_id", params.ExerciseID))
	span.SetAttributes(attribute.String("machine_id", params.MachineID))
	span.SetAttributes(attribute.Bool("finished-only", params.FinishedOnly))

	windowCol := "w." + windowColumn(params.FinishedOnly)
	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(`
			SELECT
				we.id, we.exercise_id, COALESCE(we.machine_id, ''),
				w.id, w.started_at, w.finished_at,
				ws.id, COALESCE(ws.weight, 0), COALESCE(ws.reps, 0), ws.is_warmup,
				COALESCE(ws.perceived_effort, 0), ws.reps_in_reserve, ws.completed_at
			FROM workout_exercise we
			JOIN workout w ON w.id = we.workout_id
			JOIN workout_set ws ON ws.workout_exercise_id = we.id
				WHERE w.user_id = $1
				AND ($2::text = '' OR we.exercise_id = $2)
				AND ($3::text = '' OR COALESCE(we.machine_id, '') = $3)
				AND ($4::timestamptz IS NULL OR %[1]s >= $4)
				AND ($5::timestamptz IS NULL OR %[1]s <= $5)
				AND ($6::boolean IS FALSE OR w.finished_at IS NOT NULL)
				AND ($7::int = 0 OR we.id != $7)
			ORDER BY w.finished_at ASC NULLS LAST, ws.completed_at ASC;`, windowCol),
		userID,
		params.ExerciseID, params.MachineID,
		params.From, params.To,
		params.FinishedOnly,
		params.ExcludeWorkoutExerciseID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	exercises, err := rows2exercises(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2exercises: %w", err)
	}
	return exercises, nil
}

// ListSessions returns the user's sessions, newest first.
func (r *Repo) ListSessions(ctx context.Context, userID int, params SessionParams) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.listSessions")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user_id", userID))
	span.SetAttributes(attribute.Bool("finished-only", params.FinishedOnly))

	windowCol := windowColumn(params.FinishedOnly)
	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(`
			SELECT id, user_id, started_at, finished_at
			FROM workout
				WHERE user_id = $1
				AND ($2::timestamptz IS NULL OR %[1]s >= $2)
				AND ($3::timestamptz IS NULL OR %[1]s <= $3)
				AND ($4::boolean IS FALSE OR finished_at IS NOT NULL)
			ORDER BY started_at DESC;`, windowCol),
		userID, params.From, params.To, params.FinishedOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.StartedAt, &s.FinishedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if sessions == nil {
		sessions = make([]Session, 0)
	}
	return sessions, nil
}

// RecentPairs returns the distinct (exercise, machine) pairs the user
// trained in finished sessions since the given time, most recently
// trained first, capped to limit.
func (r *Repo) RecentPairs(ctx context.Context, userID int, since time.Time, limit int) (_ []Pair, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.recentPairs")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user_id", userID))
	span.SetAttributes(attribute.Int("limit", limit))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT we.exercise_id, COALESCE(we.machine_id, ''), MAX(w.finished_at) AS last_trained
			FROM workout_exercise we
			JOIN workout w ON w.id = we.workout_id
				WHERE w.user_id = $1
				AND w.finished_at IS NOT NULL
				AND w.finished_at >= $2
			GROUP BY we.exercise_id, COALESCE(we.machine_id, '')
			ORDER BY last_trained DESC
			LIMIT $3;`,
		userID, since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var pairs []Pair
	for rows.Next() {
		var p Pair
		var lastTrained time.Time
		if err := rows.Scan(&p.ExerciseID, &p.MachineID, &lastTrained); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return pairs, nil
}

// ListActiveUserIDs returns the IDs of users with at least one finished
// session since the given time. Drives the notifier refresh loop.
func (r *Repo) ListActiveUserIDs(ctx context.Context, since time.Time) (_ []int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.listActiveUserIDs")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT DISTINCT user_id
			FROM workout
				WHERE finished_at IS NOT NULL AND finished_at >= $1
			ORDER BY user_id;`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var userIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return userIDs, nil
}

// windowColumn picks the session date the From/To window applies to.
// Baselines and rollups are specified over finish dates, so a
// finished-only listing windows on finished_at; a session started just
// before the cutoff but finished inside it still belongs to the window.
func windowColumn(finishedOnly bool) string {
	if finishedOnly {
		return "finished_at"
	}
	return "started_at"
}

func rows2exercises(rows pgx.Rows) ([]WorkoutExercise, error) {
	byID := make(map[int]*WorkoutExercise)
	var order []int
	for rows.Next() {
		var (
			weID, sessionID int
			exerciseID      string
			machineID       string
			startedAt       time.Time
			finishedAt      *time.Time
			set             Set
		)
		if err := rows.Scan(
			&weID, &exerciseID, &machineID,
			&sessionID, &startedAt, &finishedAt,
			&set.ID, &set.Weight, &set.Reps, &set.IsWarmup,
			&set.PerceivedEffort, &set.RepsInReserve, &set.CompletedAt,
		); err != nil {
			return nil, err
		}
		set.WorkoutExerciseID = weID

		we, ok := byID[weID]
		if !ok {
			we = &WorkoutExercise{
				ID:                weID,
				SessionID:         sessionID,
				ExerciseID:        exerciseID,
				MachineID:         machineID,
				SessionStartedAt:  startedAt,
				SessionFinishedAt: finishedAt,
			}
			byID[weID] = we
			order = append(order, weID)
		}
		we.Sets = append(we.Sets, set)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	exercises := make([]WorkoutExercise, 0, len(order))
	for _, id := range order {
		exercises = append(exercises, *byID[id])
	}
	return exercises, nil
}
