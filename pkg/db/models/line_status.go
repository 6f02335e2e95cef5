package models

// LineStatus is an entry of the line status catalogue.
type LineStatus struct {
	Code string `gorm:"column:code;primaryKey"`
	Name string `gorm:"column:name;not null"`
}

func (LineStatus) TableName() string { return "tracking_line_statuses" }

// All lists every model owned by the service, in dependency order. Used by the sqlite
// dev bootstrap and the tests.
func All() []any {
	return []any{
		&PurchaseOrder{},
		&LineStatus{},
		&TrackingDocument{},
		&TrackingLine{},
	}
}
