package tracking

import (
	"strings"
	"time"

	trackingsvc "github.com/xnapps/purchase-tracking/internal/tracking"
	"github.com/xnapps/purchase-tracking/pkg/enums"
	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
)

// HeaderRequest is the header part of a create or update body. Identity fields are
// never taken from the body.
type HeaderRequest struct {
	CounterpartyCode  string `json:"counterparty_code" validate:"max=50"`
	CounterpartyName  string `json:"counterparty_name" validate:"max=100"`
	ExternalReference string `json:"external_reference" validate:"max=100"`
	DocumentDate      string `json:"document_date" validate:"omitempty,datetime=2006-01-02"`
	Status            string `json:"status"`
	SourceOrderID     int64  `json:"source_order_id" validate:"gte=0"`
	SourceOrderNumber int64  `json:"source_order_number" validate:"gte=0"`
}

type LineRequest struct {
	Order       int        `json:"order" validate:"gte=0"`
	Description string     `json:"description" validate:"max=254"`
	Date        string     `json:"date" validate:"max=10"`
	Time        string     `json:"time" validate:"max=5"`
	Status      string     `json:"status" validate:"max=20"`
	StatusAt    *time.Time `json:"status_at"`
}

type DocumentRequest struct {
	Header HeaderRequest `json:"header"`
	Lines  []LineRequest `json:"lines" validate:"dive"`
}

func toHeader(req HeaderRequest) (trackingsvc.Header, error) {
	header := trackingsvc.Header{
		CounterpartyCode:  strings.TrimSpace(req.CounterpartyCode),
		CounterpartyName:  strings.TrimSpace(req.CounterpartyName),
		ExternalReference: strings.TrimSpace(req.ExternalReference),
		Status:            enums.DocumentStatusOpen,
		SourceOrderID:     req.SourceOrderID,
		SourceOrderNumber: req.SourceOrderNumber,
	}
	if req.DocumentDate != "" {
		date, err := time.Parse(trackingsvc.DateLayout, req.DocumentDate)
		if err != nil {
			return header, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "document date must look like 2006-01-02").
				WithDetails(map[string]any{"field": "header.document_date"})
		}
		header.DocumentDate = date
	}
	if strings.TrimSpace(req.Status) != "" {
		status, err := enums.ParseDocumentStatus(req.Status)
		if err != nil {
			return header, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "status must be open, closed or pending").
				WithDetails(map[string]any{"field": "header.status"})
		}
		header.Status = status
	}
	return header, nil
}

func toLines(reqs []LineRequest) []trackingsvc.Line {
	lines := make([]trackingsvc.Line, 0, len(reqs))
	for i, req := range reqs {
		order := req.Order
		if order == 0 {
			order = i + 1
		}
		lines = append(lines, trackingsvc.Line{
			Order:       order,
			Description: req.Description,
			Date:        strings.TrimSpace(req.Date),
			Time:        strings.TrimSpace(req.Time),
			Status:      strings.TrimSpace(req.Status),
			StatusAt:    req.StatusAt,
		})
	}
	return lines
}

// SourceOrderTracking answers whether a purchase order is already followed.
type SourceOrderTracking struct {
	SourceOrderID int64 `json:"source_order_id"`
	TrackingID    int64 `json:"tracking_id"`
}
