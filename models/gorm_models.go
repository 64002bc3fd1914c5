package models

import (
	"time"

	"gorm.io/gorm"
)

// GORM-compatible models with proper tags

// DesignDetailGorm represents the design_details table with GORM tags
type DesignDetailGorm struct {
	ID                  string     `gorm:"primaryKey;column:id;type:uuid;default:gen_random_uuid()" json:"id"`
	JobcardID           string     `gorm:"column:jobcard_id;type:uuid;not null;uniqueIndex" json:"jobcard_id"`
	Date                *time.Time `gorm:"column:date" json:"date,omitempty"`
	CadPhotoURL         string     `gorm:"column:cad_photo_url" json:"cad_photo_url"`
	SizeDimensions      string     `gorm:"column:size_dimensions" json:"size_dimensions"`
	StoneSpecifications string     `gorm:"column:stone_specifications" json:"stone_specifications"`
	CadBy               string     `gorm:"column:cad_by" json:"cad_by"`
	CadCompletionDate   *time.Time `gorm:"column:cad_completion_date" json:"cad_completion_date,omitempty"`
	CadFileLink         string     `gorm:"column:cad_file_link" json:"cad_file_link"`
	CamVendor           string     `gorm:"column:cam_vendor" json:"cam_vendor"`
	CamSentDate         *time.Time `gorm:"column:cam_sent_date" json:"cam_sent_date,omitempty"`
	CamReceivedDate     *time.Time `gorm:"column:cam_received_date" json:"cam_received_date,omitempty"`
	CamWeightGrams      *float64   `gorm:"column:cam_weight_grams;type:numeric(12,3)" json:"cam_weight_grams,omitempty"`
	DyeVendor           string     `gorm:"column:dye_vendor" json:"dye_vendor"`
	DyeWeight           *float64   `gorm:"column:dye_weight;type:numeric(12,3)" json:"dye_weight,omitempty"`
	FinalDyeNo          string     `gorm:"column:final_dye_no" json:"final_dye_no"`
	DyeCreationDate     *time.Time `gorm:"column:dye_creation_date" json:"dye_creation_date,omitempty"`
	CreatedAt           time.Time  `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName specifies the table name for DesignDetailGorm
func (DesignDetailGorm) TableName() string {
	return "design_details"
}

// DyeDetailGorm represents the dye_details table with GORM tags
type DyeDetailGorm struct {
	ID              string         `gorm:"primaryKey;column:id;type:uuid;default:gen_random_uuid()" json:"id"`
	JobcardID       string         `gorm:"column:jobcard_id;type:uuid" json:"jobcard_id"`
	DyeNumber       string         `gorm:"column:dye_number;not null;uniqueIndex" json:"dye_number"`
	PartName        string         `gorm:"column:part_name" json:"part_name"`
	SKUNumber       string         `gorm:"column:sku_number" json:"sku_number"`
	DyeVendor       string         `gorm:"column:dye_vendor" json:"dye_vendor"`
	DyeWeight       *float64       `gorm:"column:dye_weight;type:numeric(12,3)" json:"dye_weight,omitempty"`
	WaxPcsPerDye    *int           `gorm:"column:wax_pcs_per_dye" json:"wax_pcs_per_dye,omitempty"`
	DyeCreationDate *time.Time     `gorm:"column:dye_creation_date" json:"dye_creation_date,omitempty"`
	Notes           string         `gorm:"column:notes" json:"notes"`
	CreatedAt       time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for DyeDetailGorm
func (DyeDetailGorm) TableName() string {
	return "dye_details"
}

// ActivityLogGorm represents the activity_log table with GORM tags
type ActivityLogGorm struct {
	ID           uint           `gorm:"primaryKey;column:id" json:"id"`
	CreatedAt    time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UserName     string         `gorm:"column:user_name;not null" json:"user_name"`
	HostName     string         `gorm:"column:host_name;not null" json:"host_name"`
	EventContext string         `gorm:"column:event_context;not null" json:"event_context"`
	IPAddress    string         `gorm:"column:ip_address;not null" json:"ip_address"`
	Description  string         `gorm:"column:description;not null" json:"description"`
	EventName    string         `gorm:"column:event_name;not null" json:"event_name"`
	JobcardID    string         `gorm:"column:jobcard_id;type:uuid" json:"jobcard_id"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for ActivityLogGorm
func (ActivityLogGorm) TableName() string {
	return "activity_log"
}
