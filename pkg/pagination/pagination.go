package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the tracking list page size when the client sends no limit.
	DefaultLimit = 25
	// MaxLimit caps one page of tracking documents.
	MaxLimit = 100

	cursorPrefix = "doc:"
)

// Params is one page request of the tracking document list.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor points at the last tracking document of the previous page. Pages are ordered
// by id descending. Counterparty is the filter the page was listed under; an empty
// value means the unfiltered list.
type Cursor struct {
	ID           int64
	Counterparty string
}

func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer asks for one extra row so the query knows whether a next page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

func EncodeCursor(cursor Cursor) string {
	raw := cursorPrefix + strconv.FormatInt(cursor.ID, 10) + ":" + cursor.Counterparty
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseCursor decodes value. An empty value is the first page and yields nil.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	raw, ok := strings.CutPrefix(string(decoded), cursorPrefix)
	if !ok {
		return nil, fmt.Errorf("invalid cursor format")
	}
	idPart, counterparty, ok := strings.Cut(raw, ":")
	if !ok {
		return nil, fmt.Errorf("invalid cursor format")
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid cursor id %q", idPart)
	}
	return &Cursor{ID: id, Counterparty: counterparty}, nil
}

// ParseCursorFor decodes value and rejects a cursor listed under another counterparty.
func ParseCursorFor(value, counterparty string) (*Cursor, error) {
	cursor, err := ParseCursor(value)
	if err != nil || cursor == nil {
		return cursor, err
	}
	if cursor.Counterparty != counterparty {
		return nil, fmt.Errorf("cursor belongs to counterparty %q", cursor.Counterparty)
	}
	return cursor, nil
}
