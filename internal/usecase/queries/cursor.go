package queries

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"affiliate-notify/internal/pkg/errs"
)

var ErrInvalidCursor = errs.New("invalid cursor")

const (
	DefaultListLimit = 20
	MaxListLimit     = 200
	cursorPrefix     = "v1:"
)

// Cursor is an opaque keyset position over (created_at DESC, id DESC).
type Cursor struct {
	After string `json:"after,omitempty"`
}

// EncodeAfterCursor keeps microseconds, the precision Postgres stores.
func EncodeAfterCursor(t time.Time, id uuid.UUID) string {
	raw := cursorPrefix + strconv.FormatInt(t.UnixMicro(), 10) + "_" + id.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func DecodeAfterCursor(cursor string) (time.Time, uuid.UUID, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, errs.Mark(errs.Wrap(err, "decode cursor"), ErrInvalidCursor)
	}
	payload, ok := strings.CutPrefix(string(decoded), cursorPrefix)
	if !ok {
		return time.Time{}, uuid.Nil, errs.Wrap(ErrInvalidCursor, "unknown cursor version")
	}
	micros, rawID, ok := strings.Cut(payload, "_")
	if !ok {
		return time.Time{}, uuid.Nil, errs.Wrap(ErrInvalidCursor, "malformed cursor")
	}
	ts, err := strconv.ParseInt(micros, 10, 64)
	if err != nil {
		return time.Time{}, uuid.Nil, errs.Mark(errs.Wrap(err, "cursor timestamp"), ErrInvalidCursor)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return time.Time{}, uuid.Nil, errs.Mark(errs.Wrap(err, "cursor id"), ErrInvalidCursor)
	}
	return time.UnixMicro(ts).UTC(), id, nil
}

// ValidateLimit clamps a requested page size into [1, MaxListLimit].
func ValidateLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// paginate fetches limit+1 rows to learn whether another page exists and
// builds the cursor for it.
func paginate[T any](
	cursor *Cursor,
	limit int,
	first func(limit int32) ([]T, error),
	after func(lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]T, error),
	position func(T) (time.Time, uuid.UUID),
) ([]T, *Cursor, error) {
	limit = ValidateLimit(limit)
	var rows []T
	var err error
	if cursor == nil || cursor.After == "" {
		rows, err = first(int32(limit + 1))
	} else {
		lastCreatedAt, lastID, derr := DecodeAfterCursor(cursor.After)
		if derr != nil {
			return nil, nil, ErrInvalidCursor
		}
		rows, err = after(lastCreatedAt, lastID, int32(limit+1))
	}
	if err != nil {
		return nil, nil, err
	}
	var next *Cursor
	if len(rows) > limit {
		createdAt, id := position(rows[limit-1])
		next = &Cursor{After: EncodeAfterCursor(createdAt, id)}
		rows = rows[:limit]
	}
	return rows, next, nil
}
