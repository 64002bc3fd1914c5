package models

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
)

// Product categories a job card / inquiry can belong to. Each category selects
// its own ordered stage list from production_stages_config.
const (
	CategoryKundan   = "kundan"
	CategoryDiamond  = "diamond"
	CategoryGold     = "gold"
	CategorySilver   = "silver"
	CategoryPlatinum = "platinum"
	CategoryCustom   = "custom"
)

// ProductCategories lists every valid product category value.
var ProductCategories = []string{
	CategoryKundan, CategoryDiamond, CategoryGold,
	CategorySilver, CategoryPlatinum, CategoryCustom,
}

// IsValidCategory reports whether c is a known product category.
func IsValidCategory(c string) bool {
	for _, v := range ProductCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Job card lifecycle statuses.
const (
	JobCardInProgress = "in_progress"
	JobCardCompleted  = "completed"
	JobCardOnHold     = "on_hold"
	JobCardCancelled  = "cancelled"
)

// Stage tracking entry statuses.
const (
	StagePending    = "pending"
	StageInProgress = "in_progress"
	StageCompleted  = "completed"
)

// Inquiry review statuses (pm_review_status).
const (
	InquiryPending         = "pending"
	InquiryInReview        = "in_review"
	InquiryContinued       = "continued"
	InquiryCancelled       = "cancelled"
	InquiryInDesign        = "in_design"
	InquiryProductionReady = "production_ready"
	InquiryInProduction    = "in_production"
	InquiryCompleted       = "completed"
)

// StageDefinition is one catalog entry of production_stages_config: a single
// production step for a product category and which of the four metrics it tracks.
type StageDefinition struct {
	ID              string    `json:"id" example:"a9f1c2d0-1111-4e2a-9f31-2b7c1d8e4a55"`
	ProductCategory string    `json:"product_category" example:"gold"`
	StageName       string    `json:"stage_name" example:"Casting"`
	Department      string    `json:"department" example:"Workshop"`
	StageOrder      int       `json:"stage_order" example:"1"`
	TrackPcsIn      bool      `json:"track_pcs_in" example:"true"`
	TrackPcsOut     bool      `json:"track_pcs_out" example:"true"`
	TrackWeightIn   bool      `json:"track_weight_in" example:"false"`
	TrackWeightOut  bool      `json:"track_weight_out" example:"false"`
	IsDesignStage   bool      `json:"is_design_stage" example:"false"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

// Inquiry represents the inquiries table.
type Inquiry struct {
	ID                  string     `json:"id" example:"0b2e3c44-5555-4a6b-8c7d-9e0f1a2b3c4d"`
	InquiryID           string     `json:"inquiry_id" example:"INQ-1736941200-AB123"`
	ClientName          string     `json:"client_name" example:"Meera Shah"`
	ClientEmail         string     `json:"client_email,omitempty" example:"meera@example.com"`
	ClientPhone         string     `json:"client_phone,omitempty" example:"9876543210"`
	ProductCategory     string     `json:"product_category,omitempty" example:"gold"`
	Quantity            int        `json:"quantity" example:"2"`
	MetalDetails        string     `json:"metal_details,omitempty" example:"22K Gold"`
	PolishColor         string     `json:"polish_color,omitempty" example:"Rose Gold"`
	OrderType           string     `json:"order_type,omitempty" example:"new_design"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	SpecialInstructions string     `json:"special_instructions,omitempty"`
	ReferenceImageURL   string     `json:"reference_image_url,omitempty"`
	SalesPersonID       string     `json:"sales_person_id,omitempty"`
	PMReviewStatus      string     `json:"pm_review_status" example:"pending"`
	CancellationReason  string     `json:"cancellation_reason,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// JobCard represents the jobcards table. CurrentStage is a denormalized label of
// the most recently completed stage; it is written only by the stage completion
// operation.
type JobCard struct {
	ID               string    `json:"id" example:"7c1d2e3f-aaaa-4b5c-8d9e-0f1a2b3c4d5e"`
	JobcardNo        string    `json:"jobcard_no" example:"JC-2026-0042"`
	InquiryID        string    `json:"inquiry_id,omitempty"`
	ProductCategory  string    `json:"product_category" example:"gold"`
	OrderType        string    `json:"order_type" example:"new_design"`
	SKUNumber        string    `json:"sku_number,omitempty" example:"SKU-1045"`
	Status           string    `json:"status" example:"in_progress"`
	CurrentStage     string    `json:"current_stage,omitempty" example:"Casting"`
	PushedToWorkshop bool      `json:"pushed_to_workshop" example:"false"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Joined from the related inquiry for display; never mutated through a job card.
	ClientName        string `json:"client_name,omitempty" example:"Meera Shah"`
	InquiryNo         string `json:"inquiry_no,omitempty" example:"INQ-1736941200-AB123"`
	ReferenceImageURL string `json:"reference_image_url,omitempty"`
}

// StageTrackingEntry is one ledger row of the stage_tracking table: the actual
// work recorded for one stage of one job card. At most one row exists per
// (jobcard_id, stage_id) pair; it is created on first save and only ever
// updated afterwards (upsert, last-write-wins).
type StageTrackingEntry struct {
	ID                 string     `json:"id"`
	JobcardID          string     `json:"jobcard_id"`
	StageID            string     `json:"stage_id"`
	StageName          string     `json:"stage_name" example:"Casting"`
	Department         string     `json:"department" example:"Workshop"`
	PcsIn              *int       `json:"pcs_in,omitempty" example:"10"`
	PcsOut             *int       `json:"pcs_out,omitempty" example:"9"`
	WeightIn           *float64   `json:"weight_in,omitempty" example:"52.340"`
	WeightOut          *float64   `json:"weight_out,omitempty" example:"51.875"`
	Notes              string     `json:"notes,omitempty"`
	HandoverPersonName string     `json:"handover_person_name" example:"Raj"`
	HandoverTimestamp  *time.Time `json:"handover_timestamp,omitempty"`
	AssignedTo         string     `json:"assigned_to,omitempty"`
	Status             string     `json:"status" example:"completed"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// StageCompletionRequest is the form payload for completing a stage. Metric
// fields arrive as strings so that empty inputs are distinguishable from zero.
type StageCompletionRequest struct {
	PcsIn              string `json:"pcs_in,omitempty" example:"10"`
	PcsOut             string `json:"pcs_out,omitempty" example:"9"`
	WeightIn           string `json:"weight_in,omitempty" example:"52.340"`
	WeightOut          string `json:"weight_out,omitempty" example:"51.875"`
	Notes              string `json:"notes,omitempty"`
	HandoverPersonName string `json:"handover_person_name" example:"Raj"`
}

// StageProgress is the aggregate completion summary for one job card.
// TotalCount counts ledger rows that exist, not the catalog's stage count;
// see repository docs for why that quirk is preserved.
type StageProgress struct {
	CompletedCount int     `json:"completed_count" example:"1"`
	TotalCount     int     `json:"total_count" example:"1"`
	Percentage     float64 `json:"percentage" example:"100"`
}

// StageRow is one row of the tracking view: a catalog stage joined with its
// ledger entry (if any) and the resolved display status.
type StageRow struct {
	Definition StageDefinition     `json:"definition"`
	Entry      *StageTrackingEntry `json:"entry,omitempty"`
	Status     string              `json:"status" example:"pending"`
}

type User struct {
	ID          int       `json:"id" example:"1"`
	Email       string    `json:"email" example:"user@example.com"`
	Password    string    `json:"password" example:""`
	FullName    string    `json:"full_name" example:"Asha Patel"`
	PhoneNo     string    `json:"phone_no" example:"9876543210"`
	RoleID      int       `json:"role_id" example:"2"`
	RoleName    string    `json:"role_name" example:"production_manager"`
	Suspended   bool      `json:"suspended" example:"false"`
	FCMToken    string    `json:"fcm_token,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	FirstAccess time.Time `json:"first_access,omitempty"`
	LastAccess  time.Time `json:"last_access,omitempty"`
}

type Session struct {
	UserID                int       `json:"user_id"`
	SessionID             string    `json:"session_id"`
	HostName              string    `json:"host_name"`
	IPAddress             string    `json:"ip_address"`
	Timestamp             time.Time `json:"timestp"`
	ExpiresAt             time.Time `json:"expires_at"`
	RefreshToken          string    `json:"refresh_token,omitempty"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at,omitempty"`
}

func GetSessionBySessionID(db *sql.DB, sessionID string) (*Session, error) {
	query := `SELECT session_id, user_id, host_name, timestp FROM session WHERE session_id = $1`

	var session Session

	err := db.QueryRow(query, sessionID).Scan(&session.SessionID, &session.UserID, &session.HostName, &session.Timestamp)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("session not found")
		}
		return nil, err
	}

	return &session, nil
}

type ActivityLog struct {
	ID           int       `json:"id" example:"1"`
	CreatedAt    time.Time `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UserName     string    `json:"user_name" example:"Asha Patel"`
	HostName     string    `json:"host_name" example:"workstation-01"`
	EventContext string    `json:"event_context" example:"jobcard"`
	IPAddress    string    `json:"ip_address" example:"192.168.1.1"`
	Description  string    `json:"description" example:"Completed stage Casting"`
	EventName    string    `json:"event_name" example:"complete_stage"`
	JobcardID    string    `json:"jobcard_id,omitempty"`
}

// EmailData carries the variables substituted into an email template.
type EmailData struct {
	ClientName         string `json:"client_name"`
	InquiryID          string `json:"inquiry_id"`
	JobcardNo          string `json:"jobcard_no"`
	StageName          string `json:"stage_name"`
	Status             string `json:"status"`
	CancellationReason string `json:"cancellation_reason"`
	DueDate            string `json:"due_date"`
}

// DashboardStats is the inquiry funnel summary for the dashboard.
type DashboardStats struct {
	Total      int `json:"total" example:"120"`
	Pending    int `json:"pending" example:"8"`
	InProgress int `json:"in_progress" example:"34"`
	Completed  int `json:"completed" example:"70"`
	Cancelled  int `json:"cancelled" example:"8"`
}

// CategoryCount is one slice of a category distribution chart.
type CategoryCount struct {
	Name  string `json:"name" example:"gold"`
	Value int    `json:"value" example:"12"`
}

// MonthlyTrendPoint is one month of the 6-month inquiry/jobcard trend.
type MonthlyTrendPoint struct {
	Month     string `json:"month" example:"Mar"`
	Inquiries int    `json:"inquiries" example:"14"`
	Jobcards  int    `json:"jobcards" example:"9"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid session"`
	Code    string `json:"code,omitempty" example:"missing_handover_name"`
	Details string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Stage updated successfully"`
}
