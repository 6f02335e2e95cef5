package tracking

import (
	"time"

	"github.com/xnapps/purchase-tracking/pkg/db/models"
)

func headerFromModel(m models.TrackingDocument) Header {
	return Header{
		ID:                m.ID,
		DisplayNumber:     m.DisplayNumber,
		CounterpartyCode:  m.CounterpartyCode,
		CounterpartyName:  m.CounterpartyName,
		ExternalReference: m.ExternalReference,
		DocumentDate:      m.DocumentDate,
		Status:            m.Status,
		SourceOrderID:     m.SourceOrderID,
		SourceOrderNumber: m.SourceOrderNumber,
	}
}

func headerToModel(h Header) models.TrackingDocument {
	return models.TrackingDocument{
		ID:                h.ID,
		DisplayNumber:     h.DisplayNumber,
		CounterpartyCode:  h.CounterpartyCode,
		CounterpartyName:  h.CounterpartyName,
		ExternalReference: h.ExternalReference,
		DocumentDate:      h.DocumentDate,
		Status:            h.Status,
		SourceOrderID:     h.SourceOrderID,
		SourceOrderNumber: h.SourceOrderNumber,
	}
}

func lineFromModel(m models.TrackingLine) Line {
	return Line{
		LineID:      m.LineID,
		Order:       m.LineOrder,
		Description: m.Description,
		Date:        m.LineDate,
		Time:        m.LineTime,
		Status:      m.Status,
		StatusAt:    m.StatusAt,
	}
}

func linesFromModels(rows []models.TrackingLine) []Line {
	out := make([]Line, 0, len(rows))
	for _, row := range rows {
		out = append(out, lineFromModel(row))
	}
	return out
}

// lineRows assigns line ids 1..n in the given order and fills missing stamps with now.
func lineRows(trackingID int64, lines []Line, now time.Time) []models.TrackingLine {
	rows := make([]models.TrackingLine, 0, len(lines))
	for i, line := range lines {
		row := models.TrackingLine{
			TrackingID:  trackingID,
			LineID:      i + 1,
			LineOrder:   line.Order,
			Description: line.Description,
			LineDate:    line.Date,
			LineTime:    line.Time,
			Status:      line.Status,
			StatusAt:    line.StatusAt,
		}
		if row.LineDate == "" {
			row.LineDate = now.Format(DateLayout)
		}
		if row.LineTime == "" {
			row.LineTime = now.Format(TimeLayout)
		}
		rows = append(rows, row)
	}
	return rows
}

func sourceOrderFromModel(m models.PurchaseOrder) SourceOrder {
	return SourceOrder{
		ID:                m.ID,
		Number:            m.DocNumber,
		Date:              m.DocDate,
		CounterpartyCode:  m.CounterpartyCode,
		CounterpartyName:  m.CounterpartyName,
		ExternalReference: m.ExternalReference,
		Status:            m.DocStatus,
	}
}
