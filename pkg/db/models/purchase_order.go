package models

import (
	"time"

	"github.com/xnapps/purchase-tracking/pkg/enums"
)

// PurchaseOrder is the read-only source order a tracking document follows.
type PurchaseOrder struct {
	ID                int64                     `gorm:"column:id;primaryKey"`
	DocNumber         int64                     `gorm:"column:doc_number;not null"`
	CounterpartyCode  string                    `gorm:"column:counterparty_code;not null;index:ix_purchase_orders_counterparty"`
	CounterpartyName  string                    `gorm:"column:counterparty_name;not null;default:''"`
	ExternalReference string                    `gorm:"column:external_reference;not null;default:''"`
	DocDate           time.Time                 `gorm:"column:doc_date;not null"`
	DocStatus         enums.PurchaseOrderStatus `gorm:"column:doc_status;not null;default:'O'"`
}

func (PurchaseOrder) TableName() string { return "purchase_orders" }
