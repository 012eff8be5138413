package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkovacev/liftwatch/internal/cache"
	"github.com/mkovacev/liftwatch/internal/telemetry/metrics"
	"github.com/mkovacev/liftwatch/internal/telemetry/tracing"
	"github.com/mkovacev/liftwatch/internal/training"
	"github.com/mkovacev/liftwatch/internal/training/readiness"
	"github.com/mkovacev/liftwatch/internal/training/rollups"
	"github.com/mkovacev/liftwatch/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// MaxReadinessPairs caps how many recently trained (exercise,
	// machine) pairs one refresh samples for readiness.
	MaxReadinessPairs = 8
	// MaxPlateauCandidates keeps only the longest plateaus.
	MaxPlateauCandidates = 5
	// StreakRiskWarningDays and StreakRiskDangerDays are the gap sizes
	// at which the streak alert appears and escalates.
	StreakRiskWarningDays = 4
	StreakRiskDangerDays  = 7
	// VolumeDropRatio fires the volume alert when this week's volume
	// falls below this fraction of the prior week's same span.
	VolumeDropRatio = 0.6
	// StaleGracePeriod protects a freshly created notification from the
	// stale sweep until the user has had a chance to see it.
	StaleGracePeriod = 6 * time.Hour
	// FeedLimit caps the feed returned by a refresh.
	FeedLimit = 20

	recentPairWindow = 30 * 24 * time.Hour
	historyWindow    = 365 * 24 * time.Hour
)

// CacheMetricFeed is the analytics-cache metric key invalidated whenever
// a refresh writes or deletes a notification.
const CacheMetricFeed = "notifications-feed"

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=notifications_test

type notificationsRepo interface {
	GetByDedupeKey(ctx context.Context, userID int, dedupeKey string) (*Notification, error)
	Insert(ctx context.Context, n *Notification) error
	Update(ctx context.Context, n *Notification) error
	DeleteStaleUnread(ctx context.Context, userID int, kinds []Kind, keepKeys []string, olderThan time.Time) (int64, error)
	ListRecent(ctx context.Context, userID int, limit int) ([]Notification, error)
}

type trainingRepo interface {
	ListExercises(ctx context.Context, userID int, params training.ExerciseParams) ([]training.WorkoutExercise, error)
	ListSessions(ctx context.Context, userID int, params training.SessionParams) ([]training.Session, error)
	RecentPairs(ctx context.Context, userID int, since time.Time, limit int) ([]training.Pair, error)
}

type readinessChecker interface {
	Check(ctx context.Context, userID int, pair training.Pair) (*readiness.Result, error)
}

type Service struct {
	repo     notificationsRepo
	prefs    Preferences
	training trainingRepo
	ready    readinessChecker
	cache    cache.Invalidator
	metrics  *metrics.Manager
	now      func() time.Time
}

func NewService(
	repo notificationsRepo,
	prefs Preferences,
	trainingRepo trainingRepo,
	ready readinessChecker,
	analyticsCache cache.Invalidator,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		repo:     repo,
		prefs:    prefs,
		training: trainingRepo,
		ready:    ready,
		cache:    analyticsCache,
		metrics:  metricsManager,
		now:      time.Now,
	}
}

// Refresh rebuilds the user's notification feed from the current
// training data. It is idempotent: rerunning it with no underlying data
// change performs no writes and no deletes. Returns the user's most
// recent notifications, read and unread, capped at FeedLimit.
func (s *Service) Refresh(ctx context.Context, userID int) (_ []Notification, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "notifications.refresh")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user_id", userID))

	started := s.now()
	defer func() {
		s.metrics.HistogramRefreshDuration.Observe(time.Since(started).Seconds())
	}()

	candidates, err := s.buildCandidates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("build candidates: %w", err)
	}

	scope := cache.NewInvalidationScope(s.cache)
	keepKeys := make([]string, 0, len(candidates))
	for _, c := range candidates {
		enabled, err := s.prefs.EnabledFor(ctx, userID, c.Kind)
		if err != nil {
			return nil, fmt.Errorf("preference lookup: %w", err)
		}
		if !enabled {
			continue
		}
		keepKeys = append(keepKeys, c.DedupeKey)

		if err := s.persistCandidate(ctx, userID, c, scope); err != nil {
			if errors.Is(err, ErrUnknownUser) {
				// account deleted mid-refresh, nothing more to do
				log.Warnf("refresh [user %d]: user gone, aborting refresh", userID)
				return nil, nil
			}
			return nil, fmt.Errorf("persist candidate %s: %w", c.DedupeKey, err)
		}
	}

	deleted, err := s.repo.DeleteStaleUnread(ctx, userID, PerformanceKinds, keepKeys, started.Add(-StaleGracePeriod))
	if err != nil {
		return nil, fmt.Errorf("delete stale: %w", err)
	}
	if deleted > 0 {
		s.metrics.CounterNotificationsDeleted.WithLabelValues("stale").Add(float64(deleted))
		if err := scope.Invalidate(ctx, userID, CacheMetricFeed); err != nil {
			log.Errorf("refresh [user %d]: invalidate cache: %s", userID, err)
		}
	}

	return s.repo.ListRecent(ctx, userID, FeedLimit)
}

// persistCandidate finds or creates the notification for the candidate's
// dedupe key and writes only when a stored field would actually change.
// An insert losing a race to a concurrent refresh is retried as an
// update of the winner's row.
func (s *Service) persistCandidate(ctx context.Context, userID int, c Candidate, scope *cache.InvalidationScope) error {
	existing, err := s.repo.GetByDedupeKey(ctx, userID, c.DedupeKey)
	switch {
	case errors.Is(err, ErrNotificationNotFound):
		n := c.notification(userID)
		insertErr := s.repo.Insert(ctx, n)
		if insertErr == nil {
			s.metrics.CounterNotificationsCreated.WithLabelValues(string(c.Kind)).Inc()
			return s.invalidateFeed(ctx, userID, scope)
		}
		if !pkg.IsUniqueViolationError(insertErr) {
			return insertErr
		}
		// a concurrent refresh inserted the same key first
		existing, err = s.repo.GetByDedupeKey(ctx, userID, c.DedupeKey)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	}

	if !c.differs(existing) {
		return nil
	}
	c.apply(existing)
	if err := s.repo.Update(ctx, existing); err != nil {
		return err
	}
	s.metrics.CounterNotificationsUpdated.WithLabelValues(string(c.Kind)).Inc()
	return s.invalidateFeed(ctx, userID, scope)
}

func (s *Service) invalidateFeed(ctx context.Context, userID int, scope *cache.InvalidationScope) error {
	if err := scope.Invalidate(ctx, userID, CacheMetricFeed); err != nil {
		// a failed version bump must not fail the refresh itself
		log.Errorf("refresh [user %d]: invalidate cache: %s", userID, err)
	}
	return nil
}

func (s *Service) buildCandidates(ctx context.Context, userID int) ([]Candidate, error) {
	now := s.now()

	var candidates []Candidate

	readinessCandidates, err := s.readinessCandidates(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, readinessCandidates...)

	exercises, err := s.training.ListExercises(ctx, userID, training.ExerciseParams{
		From:         timePtr(now.Add(-historyWindow)),
		FinishedOnly: true,
	})
	if err != nil {
		return nil, err
	}
	sessions, err := s.training.ListSessions(ctx, userID, training.SessionParams{
		From:         timePtr(now.Add(-historyWindow)),
		FinishedOnly: true,
	})
	if err != nil {
		return nil, err
	}

	candidates = append(candidates, s.plateauCandidates(exercises, now)...)
	if c := s.streakRiskCandidate(sessions, now); c != nil {
		candidates = append(candidates, *c)
	}
	if c := s.volumeDropCandidate(exercises, sessions, now); c != nil {
		candidates = append(candidates, *c)
	}
	return candidates, nil
}

func (s *Service) readinessCandidates(ctx context.Context, userID int, now time.Time) ([]Candidate, error) {
	pairs, err := s.training.RecentPairs(ctx, userID, now.Add(-recentPairWindow), MaxReadinessPairs)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, pair := range pairs {
		result, err := s.ready.Check(ctx, userID, pair)
		if err != nil {
			return nil, err
		}
		if result == nil {
			continue
		}
		candidates = append(candidates, Candidate{
			Kind:      KindReadiness,
			Severity:  SeveritySuccess,
			Title:     fmt.Sprintf("Ready to progress: %s", pair.ExerciseID),
			Message:   result.Message,
			DedupeKey: fmt.Sprintf("readiness:%s:%d", pair.String(), result.SessionsAnalyzed),
			Metadata: ReadinessMetadata{
				ExerciseID:       pair.ExerciseID,
				MachineID:        pair.MachineID,
				SessionsAnalyzed: result.SessionsAnalyzed,
				AvgWeight:        result.AvgWeight,
				RepRangeLow:      result.RepRangeLow,
				RepRangeHigh:     result.RepRangeHigh,
				ConsistencyRate:  result.ConsistencyRate,
			},
		})
	}
	return candidates, nil
}

func (s *Service) plateauCandidates(exercises []training.WorkoutExercise, now time.Time) []Candidate {
	byExercise := make(map[string][]training.WorkoutExercise)
	for _, we := range exercises {
		byExercise[we.ExerciseID] = append(byExercise[we.ExerciseID], we)
	}

	plateaus := rollups.DetectPlateaus(byExercise, now)
	if len(plateaus) > MaxPlateauCandidates {
		plateaus = plateaus[:MaxPlateauCandidates]
	}

	candidates := make([]Candidate, 0, len(plateaus))
	for _, p := range plateaus {
		candidates = append(candidates, Candidate{
			Kind:     KindPlateau,
			Severity: SeverityInfo,
			Title:    fmt.Sprintf("Plateau on %s", p.ExerciseID),
			Message: fmt.Sprintf(
				"No new weight record on %s for %d weeks. Consider a deload or a program change.",
				p.ExerciseID, p.WeeksSince,
			),
			DedupeKey: fmt.Sprintf("plateau:%s:%s", p.ExerciseID, p.LastPRDate.Format("2006-01-02")),
			Metadata: PlateauMetadata{
				ExerciseID: p.ExerciseID,
				// UTC keeps the serialized form stable across runs
				LastPRDate: p.LastPRDate.UTC(),
				WeeksSince: p.WeeksSince,
			},
		})
	}
	return candidates
}

func (s *Service) streakRiskCandidate(sessions []training.Session, now time.Time) *Candidate {
	days, ok := rollups.DaysSinceLastSession(sessions, now)
	if !ok || days < StreakRiskWarningDays {
		return nil
	}

	severity := SeverityWarning
	if days >= StreakRiskDangerDays {
		severity = SeverityDanger
	}
	week := rollups.ISOWeekOf(now)
	return &Candidate{
		Kind:      KindStreakRisk,
		Severity:  severity,
		Title:     "Your streak is at risk",
		Message:   fmt.Sprintf("It has been %d days since your last workout.", days),
		DedupeKey: fmt.Sprintf("streak-risk:%s", week),
		Metadata: StreakRiskMetadata{
			DaysSinceLastSession: days,
			Week:                 week.String(),
		},
	}
}

func (s *Service) volumeDropCandidate(exercises []training.WorkoutExercise, sessions []training.Session, now time.Time) *Candidate {
	if rollups.FinishedSessionsInWeek(sessions, now) < 1 {
		return nil
	}
	priorVolume := rollups.PriorWeekSameSpanVolume(exercises, now)
	if priorVolume <= 0 {
		return nil
	}
	weekVolume := rollups.WeekToDateVolume(exercises, now)
	ratio := weekVolume / priorVolume
	if ratio >= VolumeDropRatio {
		return nil
	}

	week := rollups.ISOWeekOf(now)
	return &Candidate{
		Kind:     KindVolumeDrop,
		Severity: SeverityWarning,
		Title:    "Training volume is down",
		Message: fmt.Sprintf(
			"You lifted %.0f so far this week, down from %.0f in the same span last week.",
			weekVolume, priorVolume,
		),
		DedupeKey: fmt.Sprintf("volume-drop:%s", week),
		Metadata: VolumeDropMetadata{
			Week:            week.String(),
			WeekVolume:      weekVolume,
			PriorWeekVolume: priorVolume,
			Ratio:           ratio,
		},
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
