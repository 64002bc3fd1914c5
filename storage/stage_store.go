package storage

import (
	"context"
	"database/sql"
	"fmt"
	"jewelerp/models"
	"jewelerp/repository"
	"jewelerp/utils"
	"strings"
)

// ListStagesByCategory returns the configured stage catalog for a product
// category, ordered ascending by stage_order. An unconfigured category yields
// an empty slice, not an error.
func ListStagesByCategory(db *sql.DB, category string) ([]models.StageDefinition, error) {
	ctx, cancel := utils.GetFastQueryContext(context.Background())
	defer cancel()

	query := `
		SELECT id, product_category, stage_name, department, stage_order,
			   track_pcs_in, track_pcs_out, track_weight_in, track_weight_out,
			   is_design_stage, created_at
		FROM production_stages_config
		WHERE product_category = $1
		ORDER BY stage_order ASC`

	rows, err := db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage catalog: %v", err)
	}
	defer rows.Close()

	stages := []models.StageDefinition{}
	for rows.Next() {
		var s models.StageDefinition
		err := rows.Scan(&s.ID, &s.ProductCategory, &s.StageName, &s.Department, &s.StageOrder,
			&s.TrackPcsIn, &s.TrackPcsOut, &s.TrackWeightIn, &s.TrackWeightOut,
			&s.IsDesignStage, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage definition: %v", err)
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

// GetStageByID fetches a single catalog stage definition.
func GetStageByID(db *sql.DB, stageID string) (*models.StageDefinition, error) {
	ctx, cancel := utils.GetFastQueryContext(context.Background())
	defer cancel()

	query := `
		SELECT id, product_category, stage_name, department, stage_order,
			   track_pcs_in, track_pcs_out, track_weight_in, track_weight_out,
			   is_design_stage, created_at
		FROM production_stages_config
		WHERE id = $1`

	var s models.StageDefinition
	err := db.QueryRowContext(ctx, query, stageID).Scan(
		&s.ID, &s.ProductCategory, &s.StageName, &s.Department, &s.StageOrder,
		&s.TrackPcsIn, &s.TrackPcsOut, &s.TrackWeightIn, &s.TrackWeightOut,
		&s.IsDesignStage, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateStage inserts a new catalog stage definition. Uniqueness of
// (product_category, stage_order) and (product_category, stage_name) is
// enforced by database constraints; violations surface as pq errors.
func CreateStage(db *sql.DB, s *models.StageDefinition) error {
	query := `
		INSERT INTO production_stages_config
			(product_category, stage_name, department, stage_order,
			 track_pcs_in, track_pcs_out, track_weight_in, track_weight_out, is_design_stage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	return db.QueryRow(query,
		s.ProductCategory, s.StageName, s.Department, s.StageOrder,
		s.TrackPcsIn, s.TrackPcsOut, s.TrackWeightIn, s.TrackWeightOut, s.IsDesignStage,
	).Scan(&s.ID, &s.CreatedAt)
}

// StageExistsInCategory reports whether a category already has a stage with
// the given order or name. Used to reject duplicates before insert.
func StageExistsInCategory(db *sql.DB, category, stageName string, stageOrder int) (bool, error) {
	ctx, cancel := utils.GetFastQueryContext(context.Background())
	defer cancel()

	var count int
	query := `
		SELECT COUNT(*) FROM production_stages_config
		WHERE product_category = $1 AND (stage_order = $2 OR LOWER(stage_name) = LOWER($3))`
	err := db.QueryRowContext(ctx, query, category, stageOrder, stageName).Scan(&count)
	return count > 0, err
}

// GetStageEntries returns every ledger row recorded for a job card, keyed by
// stage_id. At most one row exists per (jobcard_id, stage_id).
func GetStageEntries(db *sql.DB, jobcardID string) (map[string]models.StageTrackingEntry, error) {
	ctx, cancel := utils.GetDefaultQueryContext(context.Background())
	defer cancel()

	query := `
		SELECT id, jobcard_id, stage_id, stage_name, department,
			   pcs_in, pcs_out, weight_in, weight_out, notes,
			   handover_person_name, handover_timestamp, assigned_to,
			   status, started_at, completed_at, created_at, updated_at
		FROM stage_tracking
		WHERE jobcard_id = $1`

	rows, err := db.QueryContext(ctx, query, jobcardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage tracking: %v", err)
	}
	defer rows.Close()

	entries := map[string]models.StageTrackingEntry{}
	for rows.Next() {
		var e models.StageTrackingEntry
		var notes, handoverName, assignedTo sql.NullString
		err := rows.Scan(&e.ID, &e.JobcardID, &e.StageID, &e.StageName, &e.Department,
			&e.PcsIn, &e.PcsOut, &e.WeightIn, &e.WeightOut, &notes,
			&handoverName, &e.HandoverTimestamp, &assignedTo,
			&e.Status, &e.StartedAt, &e.CompletedAt, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage tracking entry: %v", err)
		}
		e.Notes = notes.String
		e.HandoverPersonName = handoverName.String
		e.AssignedTo = assignedTo.String
		entries[e.StageID] = e
	}
	return entries, rows.Err()
}

// UpsertStageEntry atomically writes a ledger row keyed by (jobcard_id, stage_id).
// The first write creates the row and sets started_at; subsequent writes update
// it in place (last write wins). The full stored row is returned.
func UpsertStageEntry(tx *sql.Tx, e *models.StageTrackingEntry) error {
	query := `
		INSERT INTO stage_tracking
			(jobcard_id, stage_id, stage_name, department,
			 pcs_in, pcs_out, weight_in, weight_out, notes,
			 handover_person_name, handover_timestamp, assigned_to,
			 status, started_at, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), $14, NOW(), NOW())
		ON CONFLICT (jobcard_id, stage_id) DO UPDATE SET
			stage_name = EXCLUDED.stage_name,
			department = EXCLUDED.department,
			pcs_in = EXCLUDED.pcs_in,
			pcs_out = EXCLUDED.pcs_out,
			weight_in = EXCLUDED.weight_in,
			weight_out = EXCLUDED.weight_out,
			notes = EXCLUDED.notes,
			handover_person_name = EXCLUDED.handover_person_name,
			handover_timestamp = EXCLUDED.handover_timestamp,
			assigned_to = EXCLUDED.assigned_to,
			status = EXCLUDED.status,
			completed_at = EXCLUDED.completed_at,
			updated_at = NOW()
		RETURNING id, started_at, created_at, updated_at`

	return tx.QueryRow(query,
		e.JobcardID, e.StageID, e.StageName, e.Department,
		e.PcsIn, e.PcsOut, e.WeightIn, e.WeightOut, e.Notes,
		e.HandoverPersonName, e.HandoverTimestamp, e.AssignedTo,
		e.Status, e.CompletedAt,
	).Scan(&e.ID, &e.StartedAt, &e.CreatedAt, &e.UpdatedAt)
}

const jobcardSelect = `
	SELECT j.id, j.jobcard_no, j.inquiry_id, j.product_category, j.order_type,
		   COALESCE(j.sku_number, ''), j.status, COALESCE(j.current_stage, ''),
		   j.pushed_to_workshop, j.created_at, j.updated_at,
		   COALESCE(i.client_name, ''), COALESCE(i.inquiry_id, ''),
		   COALESCE(i.reference_image_url, '')
	FROM jobcards j
	LEFT JOIN inquiries i ON j.inquiry_id = i.id`

func scanJobCard(row interface{ Scan(...interface{}) error }) (*models.JobCard, error) {
	var j models.JobCard
	err := row.Scan(&j.ID, &j.JobcardNo, &j.InquiryID, &j.ProductCategory, &j.OrderType,
		&j.SKUNumber, &j.Status, &j.CurrentStage, &j.PushedToWorkshop,
		&j.CreatedAt, &j.UpdatedAt, &j.ClientName, &j.InquiryNo, &j.ReferenceImageURL)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// GetJobCard fetches one job card with its joined inquiry display fields.
func GetJobCard(db *sql.DB, jobcardID string) (*models.JobCard, error) {
	ctx, cancel := utils.GetFastQueryContext(context.Background())
	defer cancel()

	return scanJobCard(db.QueryRowContext(ctx, jobcardSelect+` WHERE j.id = $1`, jobcardID))
}

// ListJobCards returns job cards newest first, optionally filtered by status
// and a search term. A term shaped like a job card number matches jobcard_no
// only; anything else also matches the client name.
func ListJobCards(db *sql.DB, status, search string) ([]models.JobCard, error) {
	ctx, cancel := utils.GetDefaultQueryContext(context.Background())
	defer cancel()

	query := jobcardSelect + ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if status != "" {
		query += fmt.Sprintf(" AND j.status = $%d", argPos)
		args = append(args, status)
		argPos++
	}
	if search != "" {
		if repository.IsJobCardNo(search) {
			query += fmt.Sprintf(" AND j.jobcard_no ILIKE $%d", argPos)
		} else {
			query += fmt.Sprintf(" AND (j.jobcard_no ILIKE $%d OR i.client_name ILIKE $%d)", argPos, argPos)
		}
		args = append(args, "%"+strings.TrimSpace(search)+"%")
		argPos++
	}
	query += " ORDER BY j.created_at DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobcards: %v", err)
	}
	defer rows.Close()

	cards := []models.JobCard{}
	for rows.Next() {
		j, err := scanJobCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan jobcard: %v", err)
		}
		cards = append(cards, *j)
	}
	return cards, rows.Err()
}

// UpdateJobCardStage records the most recently completed stage label on the
// job card and, when done is true, closes the card. The lifecycle status is
// otherwise left untouched: completing a stage on an on_hold card must not
// revive it. Runs inside the stage completion transaction.
func UpdateJobCardStage(tx *sql.Tx, jobcardID, currentStage string, done bool) error {
	query := `
		UPDATE jobcards
		SET current_stage = $1,
			status = CASE WHEN $2 THEN $3 ELSE status END,
			updated_at = NOW()
		WHERE id = $4`
	_, err := tx.Exec(query, currentStage, done, models.JobCardCompleted, jobcardID)
	return err
}

// NextJobCardSequence returns the next per-year sequence number for jobcard_no
// generation, based on the count of cards created in the given year.
func NextJobCardSequence(tx *sql.Tx, year int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM jobcards WHERE EXTRACT(YEAR FROM created_at) = $1`
	if err := tx.QueryRow(query, year).Scan(&count); err != nil {
		return 0, err
	}
	return count + 1, nil
}
