// Package rollups provides calendar-bucketed aggregates over finished
// training sessions: streaks, plateaus, weekly tonnage and summaries.
// All functions are pure and operate on data already loaded in memory.
package rollups

import (
	"fmt"
	"sort"
	"time"

	"github.com/mkovacev/liftwatch/internal/training"
	"github.com/mkovacev/liftwatch/internal/training/prs"
)

const (
	// PlateauMinWeeks is how long an exercise has to go without a weight
	// PR before it counts as plateaued.
	PlateauMinWeeks = 4
	// PlateauMinSets is the minimum number of historical weighted
	// working sets required before plateau detection applies.
	PlateauMinSets = 3
	// PlateauRecencyWindow excludes exercises the user simply stopped
	// training: a plateau needs a workout within this window.
	PlateauRecencyWindow = 30 * 24 * time.Hour
)

// ISOWeek identifies a calendar week as year + ISO 8601 week number.
type ISOWeek struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

func ISOWeekOf(t time.Time) ISOWeek {
	y, w := t.ISOWeek()
	return ISOWeek{Year: y, Week: w}
}

// String renders the week as e.g. "2026-W07", zero-padded per ISO 8601.
func (w ISOWeek) String() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Week)
}

// weekStart returns the Monday 00:00 of t's ISO week, in t's location.
func weekStart(t time.Time) time.Time {
	daysFromMonday := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -daysFromMonday)
}

// DaysSinceLastSession returns full days elapsed since the user's most
// recent finished session. The second return is false when the user has
// no finished sessions at all.
func DaysSinceLastSession(sessions []training.Session, now time.Time) (int, bool) {
	var last time.Time
	for _, s := range sessions {
		if !s.Finished() {
			continue
		}
		if s.FinishedAt.After(last) {
			last = *s.FinishedAt
		}
	}
	if last.IsZero() {
		return 0, false
	}
	days := int(now.Sub(last).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days, true
}

// WeekStreak counts consecutive ISO weeks with at least one finished
// session. The streak may end at the current week or the week before it,
// so a streak is not broken mid-week before the user trains again.
func WeekStreak(sessions []training.Session, now time.Time) int {
	trained := make(map[ISOWeek]bool)
	for _, s := range sessions {
		if !s.Finished() {
			continue
		}
		trained[ISOWeekOf(*s.FinishedAt)] = true
	}
	if len(trained) == 0 {
		return 0
	}

	cursor := weekStart(now)
	if !trained[ISOWeekOf(cursor)] {
		cursor = cursor.AddDate(0, 0, -7)
		if !trained[ISOWeekOf(cursor)] {
			return 0
		}
	}

	streak := 0
	for trained[ISOWeekOf(cursor)] {
		streak++
		cursor = cursor.AddDate(0, 0, -7)
	}
	return streak
}

// Plateau marks an exercise that is still being trained but has not
// produced a weight PR for PlateauMinWeeks or longer.
type Plateau struct {
	ExerciseID  string    `json:"exerciseId"`
	LastPRDate  time.Time `json:"lastPrDate"`
	WeeksSince  int       `json:"weeksSince"`
	LastTrained time.Time `json:"lastTrained"`
}

// DetectPlateaus scans each exercise's full history and reports the ones
// that qualify, longest plateau first. The last-PR date follows the
// timeline rule, so an exercise whose only "record" is its first logged
// weight is measured from that first session, not treated as a fresh PR.
func DetectPlateaus(byExercise map[string][]training.WorkoutExercise, now time.Time) []Plateau {
	var plateaus []Plateau
	for exerciseID, exs := range byExercise {
		p, ok := detectPlateau(exerciseID, exs, now)
		if ok {
			plateaus = append(plateaus, p)
		}
	}
	sort.SliceStable(plateaus, func(i, j int) bool {
		if plateaus[i].WeeksSince != plateaus[j].WeeksSince {
			return plateaus[i].WeeksSince > plateaus[j].WeeksSince
		}
		return plateaus[i].ExerciseID < plateaus[j].ExerciseID
	})
	return plateaus
}

func detectPlateau(exerciseID string, exs []training.WorkoutExercise, now time.Time) (Plateau, bool) {
	var (
		weightedSets int
		firstSession time.Time
		lastSession  time.Time
	)
	for _, we := range exs {
		if !we.Finished() {
			continue
		}
		finished := *we.SessionFinishedAt
		if firstSession.IsZero() || finished.Before(firstSession) {
			firstSession = finished
		}
		if finished.After(lastSession) {
			lastSession = finished
		}
		for _, set := range we.WorkingSets() {
			if set.Weight > 0 {
				weightedSets++
			}
		}
	}
	if weightedSets < PlateauMinSets {
		return Plateau{}, false
	}
	if now.Sub(lastSession) > PlateauRecencyWindow {
		return Plateau{}, false
	}

	lastPR := firstSession
	for _, event := range prs.CalculateTimeline(exs, firstSession, prs.DefaultTimelineLimit) {
		if event.Kind == prs.EventWeightPR && event.Date.After(lastPR) {
			lastPR = event.Date
		}
	}

	weeksSince := int(now.Sub(lastPR).Hours() / (24 * 7))
	if weeksSince < PlateauMinWeeks {
		return Plateau{}, false
	}
	return Plateau{
		ExerciseID:  exerciseID,
		LastPRDate:  lastPR,
		WeeksSince:  weeksSince,
		LastTrained: lastSession,
	}, true
}

// WeekTonnage is the total working-set volume lifted in one ISO week.
type WeekTonnage struct {
	Week    ISOWeek `json:"week"`
	Tonnage float64 `json:"tonnage"`
}

// WeeklyTonnage buckets working-set volume by the finishing session's ISO
// week and returns the last `weeks` weeks up to and including the current
// one, oldest first. Weeks with no training appear with zero tonnage.
func WeeklyTonnage(exs []training.WorkoutExercise, now time.Time, weeks int) []WeekTonnage {
	if weeks <= 0 {
		return nil
	}

	byWeek := make(map[ISOWeek]float64)
	for _, we := range exs {
		if !we.Finished() {
			continue
		}
		byWeek[ISOWeekOf(*we.SessionFinishedAt)] += we.TotalVolume()
	}

	out := make([]WeekTonnage, 0, weeks)
	cursor := weekStart(now).AddDate(0, 0, -7*(weeks-1))
	for i := 0; i < weeks; i++ {
		week := ISOWeekOf(cursor)
		out = append(out, WeekTonnage{Week: week, Tonnage: byWeek[week]})
		cursor = cursor.AddDate(0, 0, 7)
	}
	return out
}

// WeekToDateVolume sums working-set volume over sessions finished between
// the start of the current ISO week and now.
func WeekToDateVolume(exs []training.WorkoutExercise, now time.Time) float64 {
	return volumeBetween(exs, weekStart(now), now)
}

// PriorWeekSameSpanVolume sums working-set volume over the same
// elapsed-day span one week earlier, so a Wednesday comparison covers
// Monday through Wednesday of both weeks.
func PriorWeekSameSpanVolume(exs []training.WorkoutExercise, now time.Time) float64 {
	return volumeBetween(exs, weekStart(now).AddDate(0, 0, -7), now.AddDate(0, 0, -7))
}

func volumeBetween(exs []training.WorkoutExercise, from, to time.Time) float64 {
	var total float64
	for _, we := range exs {
		if !we.Finished() {
			continue
		}
		finished := *we.SessionFinishedAt
		if finished.Before(from) || finished.After(to) {
			continue
		}
		total += we.TotalVolume()
	}
	return total
}

// FinishedSessionsInWeek counts the user's finished sessions in now's
// current ISO week, the volume-drop detector's "already trained this
// week" precondition.
func FinishedSessionsInWeek(sessions []training.Session, now time.Time) int {
	week := ISOWeekOf(now)
	count := 0
	for _, s := range sessions {
		if s.Finished() && ISOWeekOf(*s.FinishedAt) == week {
			count++
		}
	}
	return count
}

// Summary aggregates one ISO week of training.
type Summary struct {
	Week        ISOWeek     `json:"week"`
	Sessions    int         `json:"sessions"`
	WorkingSets int         `json:"workingSets"`
	Tonnage     float64     `json:"tonnage"`
	PREvents    []prs.Event `json:"prEvents"`
}

// WeeklySummary rolls up the given ISO week: finished sessions, working
// sets, tonnage and the PR events dated within it. Returns nil when the
// week holds no finished sessions.
func WeeklySummary(exs []training.WorkoutExercise, sessions []training.Session, week ISOWeek) *Summary {
	summary := &Summary{Week: week}
	for _, s := range sessions {
		if s.Finished() && ISOWeekOf(*s.FinishedAt) == week {
			summary.Sessions++
		}
	}
	if summary.Sessions == 0 {
		return nil
	}

	var earliest time.Time
	for _, we := range exs {
		if !we.Finished() {
			continue
		}
		finished := *we.SessionFinishedAt
		if earliest.IsZero() || finished.Before(earliest) {
			earliest = finished
		}
		if ISOWeekOf(finished) != week {
			continue
		}
		working := we.WorkingSets()
		summary.WorkingSets += len(working)
		summary.Tonnage += we.TotalVolume()
	}

	for _, event := range prs.CalculateTimeline(exs, earliest, prs.DefaultTimelineLimit) {
		if ISOWeekOf(event.Date) == week {
			summary.PREvents = append(summary.PREvents, event)
		}
	}
	return summary
}
