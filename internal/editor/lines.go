package editor

import (
	"sort"
	"strings"

	"github.com/xnapps/purchase-tracking/internal/tracking"
	"github.com/xnapps/purchase-tracking/pkg/clock"
	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
)

// LineBuffer is the editable, ordered line list. It keeps orders dense (1..n) and the
// list always ends with exactly one blank "next line" row.
type LineBuffer struct {
	lines []tracking.Line
	clock clock.Clock
}

// NewLineBuffer returns a buffer holding a single blank row.
func NewLineBuffer(clk clock.Clock) *LineBuffer {
	b := &LineBuffer{clock: clock.OrSystem(clk)}
	b.Reset()
	return b
}

// Lines returns a copy of the buffer in display order.
func (b *LineBuffer) Lines() []tracking.Line {
	out := make([]tracking.Line, len(b.lines))
	copy(out, b.lines)
	return out
}

func (b *LineBuffer) Len() int {
	return len(b.lines)
}

// Row returns a copy of the line at index row.
func (b *LineBuffer) Row(row int) (tracking.Line, error) {
	if err := b.checkRow(row); err != nil {
		return tracking.Line{}, err
	}
	return b.lines[row], nil
}

// Reset drops every line and leaves a single blank row.
func (b *LineBuffer) Reset() {
	b.lines = []tracking.Line{{Order: 1}}
}

// Load replaces the buffer with persisted lines, sorted by order, plus the trailing blank.
func (b *LineBuffer) Load(lines []tracking.Line) {
	b.lines = make([]tracking.Line, len(lines))
	copy(b.lines, lines)
	sort.SliceStable(b.lines, func(i, j int) bool { return b.lines[i].Order < b.lines[j].Order })
	b.Renumber()
	b.EnsureTrailingBlank()
}

// EnsureTrailingBlank appends a blank row after a meaningful last row and collapses a
// run of trailing blanks to one. It reports whether the buffer changed.
func (b *LineBuffer) EnsureTrailingBlank() bool {
	changed := false
	for len(b.lines) > 1 && !b.lines[len(b.lines)-1].Meaningful() && !b.lines[len(b.lines)-2].Meaningful() {
		b.lines = b.lines[:len(b.lines)-1]
		changed = true
	}
	if len(b.lines) == 0 || b.lines[len(b.lines)-1].Meaningful() {
		next := 1
		if len(b.lines) > 0 {
			next = b.lines[len(b.lines)-1].Order + 1
		}
		b.lines = append(b.lines, tracking.Line{Order: next})
		changed = true
	}
	return changed
}

// CommitDescription stores the description of row. A non-empty description stamps the
// row's date and time when they are still unset.
func (b *LineBuffer) CommitDescription(row int, description string) error {
	if err := b.checkRow(row); err != nil {
		return err
	}
	line := &b.lines[row]
	line.Description = description
	if line.Meaningful() {
		now := b.clock.Now()
		if line.Date == "" {
			line.Date = now.Format(tracking.DateLayout)
		}
		if line.Time == "" {
			line.Time = now.Format(tracking.TimeLayout)
		}
	}
	b.EnsureTrailingBlank()
	return nil
}

// CommitStatus stores the status of row and stamps StatusAt. Clearing the status of a
// row that has a description is rejected and leaves the row untouched.
func (b *LineBuffer) CommitStatus(row int, status string) error {
	if err := b.checkRow(row); err != nil {
		return err
	}
	line := &b.lines[row]
	if line.Meaningful() && strings.TrimSpace(status) == "" {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "line %d: status is required", line.Order).
			WithDetails(map[string]any{"field": "status", "line_order": line.Order})
	}
	line.Status = status
	if strings.TrimSpace(status) == "" {
		line.StatusAt = nil
	} else {
		now := b.clock.Now()
		line.StatusAt = &now
	}
	b.EnsureTrailingBlank()
	return nil
}

// SetStamp overwrites the free-form date or time of row.
func (b *LineBuffer) SetStamp(row int, date, clockTime *string) error {
	if err := b.checkRow(row); err != nil {
		return err
	}
	if date != nil {
		b.lines[row].Date = *date
	}
	if clockTime != nil {
		b.lines[row].Time = *clockTime
	}
	return nil
}

// Renumber assigns each row its 1-based display position as order.
func (b *LineBuffer) Renumber() {
	for i := range b.lines {
		b.lines[i].Order = i + 1
	}
}

// Insert adds a blank row before index at (at == Len appends).
func (b *LineBuffer) Insert(at int) error {
	if at < 0 || at > len(b.lines) {
		return rowError(at)
	}
	b.lines = append(b.lines, tracking.Line{})
	copy(b.lines[at+1:], b.lines[at:])
	b.lines[at] = tracking.Line{}
	b.Renumber()
	b.EnsureTrailingBlank()
	return nil
}

// Remove deletes row and renumbers. The trailing blank row is restored if needed.
func (b *LineBuffer) Remove(row int) error {
	if err := b.checkRow(row); err != nil {
		return err
	}
	b.lines = append(b.lines[:row], b.lines[row+1:]...)
	b.Renumber()
	b.EnsureTrailingBlank()
	return nil
}

// Persistable returns the meaningful rows in order, re-sequenced 1..n. This is exactly
// what a save hands to the service.
func (b *LineBuffer) Persistable() []tracking.Line {
	out := tracking.MeaningfulLines(b.lines)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	for i := range out {
		out[i].Order = i + 1
	}
	return out
}

func (b *LineBuffer) checkRow(row int) error {
	if row < 0 || row >= len(b.lines) {
		return rowError(row)
	}
	return nil
}

func rowError(row int) error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, "row %d does not exist", row).
		WithDetails(map[string]any{"row": row})
}
