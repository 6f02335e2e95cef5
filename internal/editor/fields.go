package editor

import (
	"strconv"
	"strings"
	"time"

	"github.com/xnapps/purchase-tracking/internal/tracking"
	"github.com/xnapps/purchase-tracking/pkg/enums"
	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
)

// Field keys of the bound header fields.
type Field string

const (
	FieldDocumentID        Field = "id"
	FieldDisplayNumber     Field = "display_number"
	FieldCounterpartyCode  Field = "counterparty_code"
	FieldCounterpartyName  Field = "counterparty_name"
	FieldExternalReference Field = "external_reference"
	FieldDocumentDate      Field = "document_date"
	FieldStatus            Field = "status"
	FieldSourceOrderID     Field = "source_order_id"
	FieldSourceOrderNumber Field = "source_order_number"
)

// Column keys of the line grid.
type Column string

const (
	ColumnLineID      Column = "line_id"
	ColumnOrder       Column = "order"
	ColumnDescription Column = "description"
	ColumnDate        Column = "date"
	ColumnTime        Column = "time"
	ColumnStatus      Column = "status"
	ColumnStatusAt    Column = "status_at"
)

// ColumnSpec describes one grid column.
type ColumnSpec struct {
	Key      Column `json:"key"`
	Title    string `json:"title"`
	Editable bool   `json:"editable"`
}

var columns = []ColumnSpec{
	{Key: ColumnLineID, Title: "#", Editable: false},
	{Key: ColumnOrder, Title: "Order", Editable: false},
	{Key: ColumnDescription, Title: "Description", Editable: true},
	{Key: ColumnDate, Title: "Date", Editable: true},
	{Key: ColumnTime, Title: "Time", Editable: true},
	{Key: ColumnStatus, Title: "Status", Editable: true},
	{Key: ColumnStatusAt, Title: "Status date", Editable: false},
}

// Columns enumerates the grid columns in display order.
func Columns() []ColumnSpec {
	out := make([]ColumnSpec, len(columns))
	copy(out, columns)
	return out
}

func columnSpec(key Column) (ColumnSpec, bool) {
	for _, c := range columns {
		if c.Key == key {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// applyField parses value into a copy of header. Identity fields are read-only and
// source-order fields only change through the purchase order picker.
func applyField(header tracking.Header, field Field, value string) (tracking.Header, error) {
	value = strings.TrimSpace(value)
	switch field {
	case FieldCounterpartyCode:
		header.CounterpartyCode = value
	case FieldCounterpartyName:
		header.CounterpartyName = value
	case FieldExternalReference:
		header.ExternalReference = value
	case FieldDocumentDate:
		if value == "" {
			header.DocumentDate = time.Time{}
			break
		}
		parsed, err := time.Parse(tracking.DateLayout, value)
		if err != nil {
			return header, fieldError(field, "document date must look like 2006-01-02")
		}
		header.DocumentDate = parsed
	case FieldStatus:
		status, err := enums.ParseDocumentStatus(value)
		if err != nil {
			return header, fieldError(field, err.Error())
		}
		header.Status = status
	case FieldDocumentID, FieldDisplayNumber:
		return header, fieldError(field, string(field)+" is read-only")
	case FieldSourceOrderID, FieldSourceOrderNumber:
		return header, fieldError(field, string(field)+" is set by picking a purchase order")
	default:
		return header, fieldError(field, "unknown field "+string(field))
	}
	return header, nil
}

func fieldError(field Field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"field": string(field)})
}

func parseID(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid number %q", value)
	}
	return n, nil
}
