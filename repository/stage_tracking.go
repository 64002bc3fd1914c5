package repository

import (
	"fmt"
	"jewelerp/models"
	"strconv"
	"strings"
	"time"
)

// Stage ordering modes. Freeform lets the workshop complete stages in any
// order; sequential rejects completing a stage while an earlier catalog stage
// is still pending.
const (
	OrderModeFreeform   = "freeform"
	OrderModeSequential = "sequential"
)

// Validation error codes surfaced in the `code` field of 400 responses.
const (
	CodeMissingHandoverName = "missing_handover_name"
	CodeInvalidNumericField = "invalid_numeric_field"
	CodeOutOfOrderStage     = "out_of_order_stage"
)

// ValidationError is a rejected stage completion payload. Nothing is written
// to the ledger when one of these is returned.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ResolveStageStatus maps a ledger entry to the display status of its stage.
// A stage with no ledger row is pending.
func ResolveStageStatus(entry *models.StageTrackingEntry) string {
	if entry == nil || entry.Status == "" {
		return models.StagePending
	}
	return entry.Status
}

// BuildStageRows joins the catalog with the ledger: one row per catalog stage
// in stage_order, carrying the matching ledger entry (if any) and its resolved
// status. Ledger rows whose stage_id no longer exists in the catalog are not
// shown but still count toward progress.
func BuildStageRows(defs []models.StageDefinition, entries map[string]models.StageTrackingEntry) []models.StageRow {
	rows := make([]models.StageRow, 0, len(defs))
	for _, def := range defs {
		row := models.StageRow{Definition: def}
		if e, ok := entries[def.ID]; ok {
			entry := e
			row.Entry = &entry
		}
		row.Status = ResolveStageStatus(row.Entry)
		rows = append(rows, row)
	}
	return rows
}

// ComputeProgress aggregates completion over the ledger rows that exist for a
// job card. The denominator is the number of recorded entries, not the
// catalog's stage count, so a card with one completed entry out of a
// five-stage catalog reads 100%. A card with no entries reads {0, 0, 0}.
func ComputeProgress(entries map[string]models.StageTrackingEntry) models.StageProgress {
	total := len(entries)
	if total == 0 {
		return models.StageProgress{}
	}
	completed := 0
	for _, e := range entries {
		if e.Status == models.StageCompleted {
			completed++
		}
	}
	return models.StageProgress{
		CompletedCount: completed,
		TotalCount:     total,
		Percentage:     float64(completed) / float64(total) * 100,
	}
}

// NextPendingStage returns the first catalog stage (by stage_order) without a
// completed ledger entry, or nil when every stage is completed.
func NextPendingStage(defs []models.StageDefinition, entries map[string]models.StageTrackingEntry) *models.StageDefinition {
	for i := range defs {
		e, ok := entries[defs[i].ID]
		if !ok || e.Status != models.StageCompleted {
			return &defs[i]
		}
	}
	return nil
}

// AllStagesCompleted reports whether every catalog stage has a completed
// ledger entry. An empty catalog never reads as complete.
func AllStagesCompleted(defs []models.StageDefinition, entries map[string]models.StageTrackingEntry) bool {
	if len(defs) == 0 {
		return false
	}
	return NextPendingStage(defs, entries) == nil
}

// JobCardStatusAfterCompletion returns the lifecycle status a job card holds
// after a stage completion. Only the final stage drives status: closing the
// last catalog stage completes the card, any other completion leaves the
// externally managed status (on_hold, cancelled, ...) alone.
func JobCardStatusAfterCompletion(current string, allDone bool) string {
	if allDone {
		return models.JobCardCompleted
	}
	return current
}

// CheckStageOrder enforces the ordering mode for a completion attempt.
// Freeform always passes. Sequential rejects completing a stage while any
// earlier catalog stage still lacks a completed entry.
func CheckStageOrder(mode string, defs []models.StageDefinition, entries map[string]models.StageTrackingEntry, stageID string) *ValidationError {
	if mode != OrderModeSequential {
		return nil
	}
	for _, def := range defs {
		if def.ID == stageID {
			return nil
		}
		if e, ok := entries[def.ID]; !ok || e.Status != models.StageCompleted {
			return &ValidationError{
				Code:    CodeOutOfOrderStage,
				Message: fmt.Sprintf("stage %q must be completed first", def.StageName),
			}
		}
	}
	return nil
}

// BuildCompletionEntry validates a completion payload against the stage
// definition and, if valid, builds the ledger row to upsert. Metric fields the
// stage does not track are ignored regardless of content; tracked fields must
// be empty or parse as non-negative numbers.
func BuildCompletionEntry(jobcardID string, def models.StageDefinition, req models.StageCompletionRequest, now time.Time) (*models.StageTrackingEntry, *ValidationError) {
	if strings.TrimSpace(req.HandoverPersonName) == "" {
		return nil, &ValidationError{
			Code:    CodeMissingHandoverName,
			Message: "handover person name is required",
		}
	}

	entry := &models.StageTrackingEntry{
		JobcardID:          jobcardID,
		StageID:            def.ID,
		StageName:          def.StageName,
		Department:         def.Department,
		Notes:              strings.TrimSpace(req.Notes),
		HandoverPersonName: strings.TrimSpace(req.HandoverPersonName),
		HandoverTimestamp:  &now,
		Status:             models.StageCompleted,
		CompletedAt:        &now,
	}

	var verr *ValidationError
	if def.TrackPcsIn {
		if entry.PcsIn, verr = parsePcs("pcs_in", req.PcsIn); verr != nil {
			return nil, verr
		}
	}
	if def.TrackPcsOut {
		if entry.PcsOut, verr = parsePcs("pcs_out", req.PcsOut); verr != nil {
			return nil, verr
		}
	}
	if def.TrackWeightIn {
		if entry.WeightIn, verr = parseWeight("weight_in", req.WeightIn); verr != nil {
			return nil, verr
		}
	}
	if def.TrackWeightOut {
		if entry.WeightOut, verr = parseWeight("weight_out", req.WeightOut); verr != nil {
			return nil, verr
		}
	}

	return entry, nil
}

func parsePcs(field, raw string) (*int, *ValidationError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, &ValidationError{
			Code:    CodeInvalidNumericField,
			Message: fmt.Sprintf("%s must be a non-negative whole number", field),
		}
	}
	return &n, nil
}

func parseWeight(field, raw string) (*float64, *ValidationError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	w, err := strconv.ParseFloat(raw, 64)
	if err != nil || w < 0 {
		return nil, &ValidationError{
			Code:    CodeInvalidNumericField,
			Message: fmt.Sprintf("%s must be a non-negative number in grams", field),
		}
	}
	return &w, nil
}
