package domain

import (
	"encoding/base64"
	"strconv"
)

// DefaultPerPage is the page size used when neither the request nor the
// table definition specifies one.
const DefaultPerPage = 15

// MaxPerPage is the upper bound applied to requested page sizes unless a
// table definition lowers or raises it.
const MaxPerPage = 100

// PageRequest holds the pagination parameters of one table request.
type PageRequest struct {
	Page    int
	PerPage int
	Cursor  string // opaque token (base64-encoded offset)
}

// Limit returns the effective page size, clamped to [1, max]. A
// non-positive request falls back to def.
func (p PageRequest) Limit(def, max int) int {
	if max <= 0 {
		max = MaxPerPage
	}
	if def <= 0 {
		def = DefaultPerPage
	}
	if def > max {
		def = max
	}
	if p.PerPage <= 0 {
		return def
	}
	if p.PerPage > max {
		return max
	}
	return p.PerPage
}

// CurrentPage returns the 1-based requested page, clamping values below 1.
func (p PageRequest) CurrentPage() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

// CursorOffset decodes the cursor into an offset. The second result is
// false when the cursor is empty or cannot be decoded.
func (p PageRequest) CursorOffset() (int, bool) {
	return DecodeCursor(p.Cursor)
}

// EncodeCursor creates an opaque cursor from an offset.
// Returns empty string if offset is 0 or negative.
func EncodeCursor(offset int) string {
	if offset <= 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

// DecodeCursor is the inverse of EncodeCursor.
func DecodeCursor(cursor string) (int, bool) {
	if cursor == "" {
		return 0, false
	}
	decoded, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, false
	}
	offset, err := strconv.Atoi(string(decoded))
	if err != nil || offset < 0 {
		return 0, false
	}
	return offset, true
}

// NextCursor calculates the cursor of the page following [offset, offset+limit).
// Returns empty string if there are no more rows.
func NextCursor(offset, limit int, total int64) string {
	next := offset + limit
	if int64(next) >= total {
		return ""
	}
	return EncodeCursor(next)
}

// LastPage returns the number of the last non-empty page, or 1 when there
// are no rows at all.
func LastPage(total int64, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
