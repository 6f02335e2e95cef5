package tracking

import (
	"strings"
	"time"

	"github.com/xnapps/purchase-tracking/pkg/enums"
)

// Layouts of the free-form line stamps.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Header carries the scalar fields of a tracking document.
type Header struct {
	ID                int64                `json:"id"`
	DisplayNumber     int64                `json:"display_number"`
	CounterpartyCode  string               `json:"counterparty_code"`
	CounterpartyName  string               `json:"counterparty_name"`
	ExternalReference string               `json:"external_reference"`
	DocumentDate      time.Time            `json:"document_date"`
	Status            enums.DocumentStatus `json:"status"`
	SourceOrderID     int64                `json:"source_order_id"`
	SourceOrderNumber int64                `json:"source_order_number"`
}

// Line is one milestone. LineID is 0 until the line is persisted.
type Line struct {
	LineID      int        `json:"line_id"`
	Order       int        `json:"order"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Status      string     `json:"status"`
	StatusAt    *time.Time `json:"status_at,omitempty"`
}

// Meaningful reports whether the line carries a description. Only meaningful lines are
// validated and persisted.
func (l Line) Meaningful() bool {
	return strings.TrimSpace(l.Description) != ""
}

// Document is the aggregate: a header and its lines ordered by Order.
type Document struct {
	Header Header `json:"header"`
	Lines  []Line `json:"lines"`
}

// SourceOrder is an open purchase order a tracking document can follow.
type SourceOrder struct {
	ID                int64                     `json:"id"`
	Number            int64                     `json:"number"`
	Date              time.Time                 `json:"date"`
	CounterpartyCode  string                    `json:"counterparty_code"`
	CounterpartyName  string                    `json:"counterparty_name"`
	ExternalReference string                    `json:"external_reference"`
	Status            enums.PurchaseOrderStatus `json:"status"`
}

// LineStatus is a selectable line status code.
type LineStatus struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// HeaderPage is one cursor page of headers, newest first.
type HeaderPage struct {
	Headers    []Header `json:"headers"`
	NextCursor string   `json:"next_cursor,omitempty"`
}
