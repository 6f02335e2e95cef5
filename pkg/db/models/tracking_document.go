package models

import (
	"time"

	"github.com/xnapps/purchase-tracking/pkg/enums"
)

// TrackingDocument is the persisted header of a purchase order tracking document.
type TrackingDocument struct {
	ID                int64                `gorm:"column:id;primaryKey;autoIncrement"`
	DisplayNumber     int64                `gorm:"column:display_number;not null;uniqueIndex:ux_tracking_documents_display_number"`
	CounterpartyCode  string               `gorm:"column:counterparty_code;not null;index:ix_tracking_documents_counterparty"`
	CounterpartyName  string               `gorm:"column:counterparty_name;not null;default:''"`
	ExternalReference string               `gorm:"column:external_reference;not null;default:''"`
	DocumentDate      time.Time            `gorm:"column:document_date;not null"`
	Status            enums.DocumentStatus `gorm:"column:status;not null;default:0"`
	SourceOrderID     int64                `gorm:"column:source_order_id;not null;default:0;uniqueIndex:ux_tracking_documents_source_order,where:source_order_id > 0"`
	SourceOrderNumber int64                `gorm:"column:source_order_number;not null;default:0"`
	Lines             []TrackingLine       `gorm:"foreignKey:TrackingID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (TrackingDocument) TableName() string { return "tracking_documents" }
