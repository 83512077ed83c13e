package pagination

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	cursorVersion = 1
	cursorSize    = 1 + 8 + 16
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Params carries a requested page from the HTTP layer to a service.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the first row of the next page in (created_at DESC, id DESC)
// order. The row it names is included in that page.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// NormalizeLimit maps non-positive limits to DefaultLimit and caps at MaxLimit.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// LimitWithBuffer asks for one extra row so Trim can tell whether a next page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// Page is a gorm scope for newest-first keyset pagination on created_at, id.
func Page(cursor *Cursor, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if cursor != nil {
			db = db.Where("(created_at < ? OR (created_at = ? AND id <= ?))",
				cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
		}
		return db.Order("created_at DESC, id DESC").Limit(LimitWithBuffer(limit))
	}
}

// Trim cuts a buffered result set to the page size and returns the cursor of
// the first row left out, if any.
func Trim[T any](rows []T, limit int, key func(T) Cursor) ([]T, *Cursor) {
	size := NormalizeLimit(limit)
	if len(rows) <= size {
		return rows, nil
	}
	next := key(rows[size])
	return rows[:size], &next
}

// EncodeCursor packs a version byte, unix nanoseconds and the id into an
// opaque URL-safe token.
func EncodeCursor(c Cursor) string {
	buf := make([]byte, cursorSize)
	buf[0] = cursorVersion
	binary.BigEndian.PutUint64(buf[1:9], uint64(c.CreatedAt.UnixNano()))
	copy(buf[9:], c.ID[:])
	return base64.RawURLEncoding.EncodeToString(buf)
}

func EncodeNext(c *Cursor) string {
	if c == nil {
		return ""
	}
	return EncodeCursor(*c)
}

// ParseCursor returns nil for a blank value.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	buf, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if len(buf) != cursorSize || buf[0] != cursorVersion {
		return nil, ErrInvalidCursor
	}
	id, err := uuid.FromBytes(buf[9:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return &Cursor{
		CreatedAt: time.Unix(0, int64(binary.BigEndian.Uint64(buf[1:9]))).UTC(),
		ID:        id,
	}, nil
}
