package models

import "time"

// TrackingLine is one milestone of a tracking document. LineDate and LineTime keep the
// free-form "2006-01-02" and "15:04" stamps written by the editor.
type TrackingLine struct {
	TrackingID  int64      `gorm:"column:tracking_id;primaryKey;autoIncrement:false;index:ix_tracking_lines_order,priority:1"`
	LineID      int        `gorm:"column:line_id;primaryKey;autoIncrement:false"`
	LineOrder   int        `gorm:"column:line_order;not null;index:ix_tracking_lines_order,priority:2"`
	Description string     `gorm:"column:description;not null"`
	LineDate    string     `gorm:"column:line_date;not null;default:''"`
	LineTime    string     `gorm:"column:line_time;not null;default:''"`
	Status      string     `gorm:"column:status;not null;default:''"`
	StatusAt    *time.Time `gorm:"column:status_at"`
}

func (TrackingLine) TableName() string { return "tracking_lines" }
