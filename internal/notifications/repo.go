package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkovacev/liftwatch/internal/telemetry/tracing"
	"github.com/mkovacev/liftwatch/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrUnknownUser is returned when an insert hits a missing user row,
	// e.g. the account was deleted while a refresh was running.
	ErrUnknownUser = errors.New("unknown user")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) GetByDedupeKey(ctx context.Context, userID int, dedupeKey string) (_ *Notification, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notifications.getByDedupeKey")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user_id", userID))
	span.SetAttributes(attribute.String("dedupe_key", dedupeKey))

	row := r.db.QueryRow(
		ctx,
		`
			SELECT id, user_id, kind, severity, title, message, dedupe_key, metadata, read_at, created_at, updated_at
			FROM notification
				WHERE user_id = $1 AND dedupe_key = $2;`,
		userID, dedupeKey,
	)
	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *Repo) Insert(ctx context.Context, n *Notification) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notifications.insert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("kind", string(n.Kind)))

	metadata, err := MarshalMetadata(n.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	row := r.db.QueryRow(
		ctx,
		`
			INSERT INTO notification (user_id, kind, severity, title, message, dedupe_key, metadata, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			RETURNING id, created_at, updated_at;`,
		n.UserID, n.Kind, n.Severity, n.Title, n.Message, n.DedupeKey, metadata,
	)
	if err := row.Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return ErrUnknownUser
		}
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, n *Notification) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notifications.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", n.ID))

	metadata, err := MarshalMetadata(n.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	tag, err := r.db.Exec(
		ctx,
		`
			UPDATE notification
			SET kind = $1, severity = $2, title = $3, message = $4, metadata = $5, updated_at = NOW()
				WHERE id = $6;`,
		n.Kind, n.Severity, n.Title, n.Message, metadata, n.ID,
	)
	if err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// DeleteStaleUnread removes the user's unread notifications of the given
// kinds whose dedupe key is not in keepKeys and which were created before
// olderThan. Returns the number of rows removed.
func (r *Repo) DeleteStaleUnread(ctx context.Context, userID int, kinds []Kind, keepKeys []string, olderThan time.Time) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notifications.deleteStaleUnread")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user_id", userID))

	kindNames := make([]string, 0, len(kinds))
	for _, k := range kinds {
		kindNames = append(kindNames, string(k))
	}
	if keepKeys == nil {
		keepKeys = []string{}
	}

	tag, err := r.db.Exec(
		ctx,
		`
			DELETE FROM notification
				WHERE user_id = $1
				AND read_at IS NULL
				AND kind = ANY($2)
				AND NOT (dedupe_key = ANY($3))
				AND created_at < $4;`,
		userID, kindNames, keepKeys, olderThan,
	)
	if err != nil {
		return 0, fmt.Errorf("delete stale notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListRecent returns the user's newest notifications, read or not,
// capped at limit.
func (r *Repo) ListRecent(ctx context.Context, userID int, limit int) (_ []Notification, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notifications.listRecent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user_id", userID))
	span.SetAttributes(attribute.Int("limit", limit))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, user_id, kind, severity, title, message, dedupe_key, metadata, read_at, created_at, updated_at
			FROM notification
				WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2;`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	notifications := make([]Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return notifications, nil
}

func scanNotification(row pgx.Row) (*Notification, error) {
	var (
		n        Notification
		metadata []byte
	)
	if err := row.Scan(
		&n.ID, &n.UserID, &n.Kind, &n.Severity, &n.Title, &n.Message,
		&n.DedupeKey, &metadata, &n.ReadAt, &n.CreatedAt, &n.UpdatedAt,
	); err != nil {
		return nil, err
	}

	m, err := UnmarshalMetadata(metadata)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	n.Metadata = m
	return &n, nil
}

// Preferences gates which notification kinds a refresh will emit for a
// given user.
type Preferences interface {
	EnabledFor(ctx context.Context, userID int, kind Kind) (bool, error)
}

// PrefsRepo reads per-user per-kind toggles; a user with no row for a
// kind has it enabled.
type PrefsRepo struct {
	db *pgxpool.Pool
}

func NewPrefsRepo(db *pgxpool.Pool) *PrefsRepo {
	return &PrefsRepo{
		db: db,
	}
}

func (r *PrefsRepo) EnabledFor(ctx context.Context, userID int, kind Kind) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notificationPrefs.enabledFor")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var enabled bool
	err = r.db.QueryRow(
		ctx,
		`
			SELECT enabled
			FROM notification_pref
				WHERE user_id = $1 AND kind = $2;`,
		userID, kind,
	).Scan(&enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("query: %w", err)
	}
	return enabled, nil
}
