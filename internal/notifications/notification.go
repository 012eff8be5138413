// Package notifications turns analyzer output into a deduplicated,
// idempotently refreshed notification feed persisted per user.
package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

type Kind string

const (
	KindReadiness  Kind = "readiness"
	KindPlateau    Kind = "plateau"
	KindStreakRisk Kind = "streak_risk"
	KindVolumeDrop Kind = "volume_drop"
	KindRestTimer  Kind = "rest_timer"
)

// PerformanceKinds are the kinds the refresh pass owns end to end: it
// creates them and retires the stale ones. Rest timer alerts come from
// the workout tracker itself and are never deleted by a refresh.
var PerformanceKinds = []Kind{KindReadiness, KindPlateau, KindStreakRisk, KindVolumeDrop}

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Metadata is the kind-specific payload stored in the notification's
// jsonb column, serialized with a "type" discriminator.
type Metadata interface {
	metadataType() string
}

type ReadinessMetadata struct {
	ExerciseID       string  `json:"exerciseId"`
	MachineID        string  `json:"machineId,omitempty"`
	SessionsAnalyzed int     `json:"sessionsAnalyzed"`
	AvgWeight        float64 `json:"avgWeight"`
	RepRangeLow      int     `json:"repRangeLow"`
	RepRangeHigh     int     `json:"repRangeHigh"`
	ConsistencyRate  float64 `json:"consistencyRate"`
}

func (ReadinessMetadata) metadataType() string { return string(KindReadiness) }

type PlateauMetadata struct {
	ExerciseID string    `json:"exerciseId"`
	LastPRDate time.Time `json:"lastPrDate"`
	WeeksSince int       `json:"weeksSince"`
}

func (PlateauMetadata) metadataType() string { return string(KindPlateau) }

// MarshalJSON serializes LastPRDate in UTC so the same instant always
// produces the same blob, whatever location the detector ran in.
func (m PlateauMetadata) MarshalJSON() ([]byte, error) {
	type plain PlateauMetadata
	p := plain(m)
	p.LastPRDate = m.LastPRDate.UTC()
	return json.Marshal(p)
}

type StreakRiskMetadata struct {
	DaysSinceLastSession int    `json:"daysSinceLastSession"`
	Week                 string `json:"week"`
}

func (StreakRiskMetadata) metadataType() string { return string(KindStreakRisk) }

type VolumeDropMetadata struct {
	Week            string  `json:"week"`
	WeekVolume      float64 `json:"weekVolume"`
	PriorWeekVolume float64 `json:"priorWeekVolume"`
	Ratio           float64 `json:"ratio"`
}

func (VolumeDropMetadata) metadataType() string { return string(KindVolumeDrop) }

type RestTimerMetadata struct {
	WorkoutID   int `json:"workoutId"`
	RestSeconds int `json:"restSeconds"`
}

func (RestTimerMetadata) metadataType() string { return string(KindRestTimer) }

// MarshalMetadata serializes the payload with its type discriminator
// folded into the same JSON object.
func MarshalMetadata(m Metadata) ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	obj["type"] = m.metadataType()
	return json.Marshal(obj)
}

// UnmarshalMetadata picks the payload type from the discriminator.
func UnmarshalMetadata(data []byte) (Metadata, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("unmarshal discriminator: %w", err)
	}

	var m Metadata
	switch Kind(probe.Type) {
	case KindReadiness:
		m = &ReadinessMetadata{}
	case KindPlateau:
		m = &PlateauMetadata{}
	case KindStreakRisk:
		m = &StreakRiskMetadata{}
	case KindVolumeDrop:
		m = &VolumeDropMetadata{}
	case KindRestTimer:
		m = &RestTimerMetadata{}
	default:
		return nil, fmt.Errorf("unknown metadata type %q", probe.Type)
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", probe.Type, err)
	}
	return reflect.ValueOf(m).Elem().Interface().(Metadata), nil
}

type Notification struct {
	ID        int        `json:"id"`
	UserID    int        `json:"userId"`
	Kind      Kind       `json:"kind"`
	Severity  Severity   `json:"severity"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	DedupeKey string     `json:"dedupeKey"`
	Metadata  Metadata   `json:"metadata,omitempty"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (n *Notification) Read() bool {
	return n.ReadAt != nil
}

// Candidate is one detected condition a refresh run wants persisted.
type Candidate struct {
	Kind      Kind
	Severity  Severity
	Title     string
	Message   string
	DedupeKey string
	Metadata  Metadata
}

// notification materializes the candidate for the given user.
func (c Candidate) notification(userID int) *Notification {
	return &Notification{
		UserID:    userID,
		Kind:      c.Kind,
		Severity:  c.Severity,
		Title:     c.Title,
		Message:   c.Message,
		DedupeKey: c.DedupeKey,
		Metadata:  c.Metadata,
	}
}

// differs reports whether persisting the candidate over the notification
// would change any stored field. Equal content means the refresh can
// skip the write entirely.
func (c Candidate) differs(n *Notification) bool {
	return n.Kind != c.Kind ||
		n.Severity != c.Severity ||
		n.Title != c.Title ||
		n.Message != c.Message ||
		!metadataEqual(n.Metadata, c.Metadata)
}

// metadataEqual compares payloads by their serialized form. A struct
// comparison would treat the same instant in two time.Location
// representations as different, and metadata read back from the jsonb
// column never shares the locations of a freshly built candidate.
func metadataEqual(a, b Metadata) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	aJSON, err := MarshalMetadata(a)
	if err != nil {
		return false
	}
	bJSON, err := MarshalMetadata(b)
	if err != nil {
		return false
	}
	return bytes.Equal(aJSON, bJSON)
}

// apply copies the candidate's fields onto the existing notification.
func (c Candidate) apply(n *Notification) {
	n.Kind = c.Kind
	n.Severity = c.Severity
	n.Title = c.Title
	n.Message = c.Message
	n.Metadata = c.Metadata
}
