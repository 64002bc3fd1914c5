package repository

import (
	"jewelerp/models"
	"testing"
	"time"
)

func goldCatalog() []models.StageDefinition {
	return []models.StageDefinition{
		{ID: "s1", ProductCategory: "gold", StageName: "Casting", Department: "Workshop", StageOrder: 1,
			TrackPcsIn: true, TrackPcsOut: true, TrackWeightIn: true, TrackWeightOut: true},
		{ID: "s2", ProductCategory: "gold", StageName: "Filing", Department: "Workshop", StageOrder: 2,
			TrackPcsIn: true, TrackPcsOut: true},
		{ID: "s3", ProductCategory: "gold", StageName: "Polishing", Department: "Finishing", StageOrder: 3,
			TrackWeightIn: true, TrackWeightOut: true},
	}
}

func completedEntry(stageID string) models.StageTrackingEntry {
	now := time.Now()
	return models.StageTrackingEntry{
		StageID:            stageID,
		Status:             models.StageCompleted,
		HandoverPersonName: "Raj",
		HandoverTimestamp:  &now,
		CompletedAt:        &now,
	}
}

func TestResolveStageStatusDefaultsToPending(t *testing.T) {
	if got := ResolveStageStatus(nil); got != models.StagePending {
		t.Errorf("nil entry: got %q, want %q", got, models.StagePending)
	}
	if got := ResolveStageStatus(&models.StageTrackingEntry{}); got != models.StagePending {
		t.Errorf("empty status: got %q, want %q", got, models.StagePending)
	}
	e := completedEntry("s1")
	if got := ResolveStageStatus(&e); got != models.StageCompleted {
		t.Errorf("completed entry: got %q, want %q", got, models.StageCompleted)
	}
}

func TestBuildStageRowsPreservesCatalogOrder(t *testing.T) {
	defs := goldCatalog()
	entries := map[string]models.StageTrackingEntry{"s2": completedEntry("s2")}

	rows := BuildStageRows(defs, entries)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, want := range []string{"Casting", "Filing", "Polishing"} {
		if rows[i].Definition.StageName != want {
			t.Errorf("row %d: got %q, want %q", i, rows[i].Definition.StageName, want)
		}
	}
	if rows[0].Status != models.StagePending || rows[2].Status != models.StagePending {
		t.Error("stages without entries should resolve to pending")
	}
	if rows[1].Status != models.StageCompleted {
		t.Errorf("Filing should be completed, got %q", rows[1].Status)
	}
	if rows[1].Entry == nil || rows[1].Entry.HandoverPersonName != "Raj" {
		t.Error("completed row should carry its ledger entry")
	}
}

func TestComputeProgressEmptyLedger(t *testing.T) {
	p := ComputeProgress(nil)
	if p.CompletedCount != 0 || p.TotalCount != 0 || p.Percentage != 0 {
		t.Errorf("empty ledger: got %+v, want zeros", p)
	}
}

func TestComputeProgressCountsLedgerRowsNotCatalog(t *testing.T) {
	// One completed entry out of a three-stage catalog still reads 100%
	// because the denominator is recorded entries, not catalog size.
	entries := map[string]models.StageTrackingEntry{"s1": completedEntry("s1")}
	p := ComputeProgress(entries)
	if p.CompletedCount != 1 || p.TotalCount != 1 || p.Percentage != 100 {
		t.Errorf("got %+v, want {1 1 100}", p)
	}

	entries["s2"] = models.StageTrackingEntry{StageID: "s2", Status: models.StageInProgress}
	p = ComputeProgress(entries)
	if p.CompletedCount != 1 || p.TotalCount != 2 || p.Percentage != 50 {
		t.Errorf("got %+v, want {1 2 50}", p)
	}
}

func TestNextPendingStageAndAllCompleted(t *testing.T) {
	defs := goldCatalog()
	entries := map[string]models.StageTrackingEntry{
		"s1": completedEntry("s1"),
	}

	next := NextPendingStage(defs, entries)
	if next == nil || next.StageName != "Filing" {
		t.Fatalf("got %v, want Filing", next)
	}
	if AllStagesCompleted(defs, entries) {
		t.Error("card with pending stages should not read complete")
	}

	entries["s2"] = completedEntry("s2")
	entries["s3"] = completedEntry("s3")
	if !AllStagesCompleted(defs, entries) {
		t.Error("card with every stage completed should read complete")
	}
	if AllStagesCompleted(nil, entries) {
		t.Error("empty catalog never reads complete")
	}
}

func TestCheckStageOrderFreeformAlwaysPasses(t *testing.T) {
	defs := goldCatalog()
	if verr := CheckStageOrder(OrderModeFreeform, defs, nil, "s3"); verr != nil {
		t.Errorf("freeform should allow any stage, got %v", verr)
	}
}

func TestCheckStageOrderSequential(t *testing.T) {
	defs := goldCatalog()

	verr := CheckStageOrder(OrderModeSequential, defs, nil, "s2")
	if verr == nil || verr.Code != CodeOutOfOrderStage {
		t.Fatalf("completing Filing before Casting should fail, got %v", verr)
	}

	entries := map[string]models.StageTrackingEntry{"s1": completedEntry("s1")}
	if verr := CheckStageOrder(OrderModeSequential, defs, entries, "s2"); verr != nil {
		t.Errorf("Filing after Casting should pass, got %v", verr)
	}

	// Re-completing an already completed stage is always in order.
	if verr := CheckStageOrder(OrderModeSequential, defs, entries, "s1"); verr != nil {
		t.Errorf("re-completing Casting should pass, got %v", verr)
	}
}

func TestBuildCompletionEntryRequiresHandover(t *testing.T) {
	def := goldCatalog()[0]
	_, verr := BuildCompletionEntry("jc1", def, models.StageCompletionRequest{
		PcsIn: "10", HandoverPersonName: "   ",
	}, time.Now())
	if verr == nil || verr.Code != CodeMissingHandoverName {
		t.Fatalf("got %v, want %s", verr, CodeMissingHandoverName)
	}
}

func TestBuildCompletionEntryRejectsBadNumerics(t *testing.T) {
	def := goldCatalog()[0]
	cases := []models.StageCompletionRequest{
		{PcsIn: "ten", HandoverPersonName: "Raj"},
		{PcsIn: "-1", HandoverPersonName: "Raj"},
		{WeightIn: "abc", HandoverPersonName: "Raj"},
		{WeightOut: "-0.5", HandoverPersonName: "Raj"},
	}
	for i, req := range cases {
		if _, verr := BuildCompletionEntry("jc1", def, req, time.Now()); verr == nil || verr.Code != CodeInvalidNumericField {
			t.Errorf("case %d: got %v, want %s", i, verr, CodeInvalidNumericField)
		}
	}
}

func TestBuildCompletionEntryIgnoresUntrackedFields(t *testing.T) {
	// Polishing tracks weights only; garbage in the pcs fields must be ignored.
	def := goldCatalog()[2]
	entry, verr := BuildCompletionEntry("jc1", def, models.StageCompletionRequest{
		PcsIn:              "not-a-number",
		PcsOut:             "-99",
		WeightIn:           "52.340",
		WeightOut:          "51.875",
		HandoverPersonName: "Raj",
	}, time.Now())
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	if entry.PcsIn != nil || entry.PcsOut != nil {
		t.Error("untracked pcs fields should stay nil")
	}
	if entry.WeightIn == nil || *entry.WeightIn != 52.34 {
		t.Errorf("weight_in: got %v, want 52.34", entry.WeightIn)
	}
	if entry.WeightOut == nil || *entry.WeightOut != 51.875 {
		t.Errorf("weight_out: got %v, want 51.875", entry.WeightOut)
	}
}

func TestBuildCompletionEntryEmptyMetricsAllowed(t *testing.T) {
	def := goldCatalog()[0]
	entry, verr := BuildCompletionEntry("jc1", def, models.StageCompletionRequest{
		HandoverPersonName: "Raj",
	}, time.Now())
	if verr != nil {
		t.Fatalf("empty tracked metrics should be allowed, got %v", verr)
	}
	if entry.PcsIn != nil || entry.WeightIn != nil {
		t.Error("empty inputs should produce nil metrics, not zero")
	}
}

func TestBuildCompletionEntryStampsCompletion(t *testing.T) {
	def := goldCatalog()[1]
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	entry, verr := BuildCompletionEntry("jc1", def, models.StageCompletionRequest{
		PcsIn: "10", PcsOut: "9", Notes: "one piece held back",
		HandoverPersonName: " Raj ",
	}, now)
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	if entry.Status != models.StageCompleted {
		t.Errorf("status: got %q", entry.Status)
	}
	if entry.HandoverPersonName != "Raj" {
		t.Errorf("handover name should be trimmed, got %q", entry.HandoverPersonName)
	}
	if entry.CompletedAt == nil || !entry.CompletedAt.Equal(now) {
		t.Error("completed_at should be the completion time")
	}
	if entry.HandoverTimestamp == nil || !entry.HandoverTimestamp.Equal(now) {
		t.Error("handover_timestamp should be the completion time")
	}
	if entry.StageName != "Filing" || entry.Department != "Workshop" {
		t.Error("entry should snapshot the stage name and department")
	}
	if entry.PcsIn == nil || *entry.PcsIn != 10 || entry.PcsOut == nil || *entry.PcsOut != 9 {
		t.Error("tracked pcs metrics should be parsed")
	}
}

// Re-completing a stage builds the same row shape; the database upsert keyed
// by (jobcard_id, stage_id) makes the operation last-write-wins.
func TestBuildCompletionEntryDeterministic(t *testing.T) {
	def := goldCatalog()[0]
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	req := models.StageCompletionRequest{PcsIn: "5", WeightIn: "12.5", HandoverPersonName: "Asha"}

	a, _ := BuildCompletionEntry("jc1", def, req, now)
	b, _ := BuildCompletionEntry("jc1", def, req, now)
	if *a.PcsIn != *b.PcsIn || *a.WeightIn != *b.WeightIn || a.HandoverPersonName != b.HandoverPersonName {
		t.Error("same payload should build the same entry")
	}
	if a.JobcardID != "jc1" || a.StageID != "s1" {
		t.Error("entry should be keyed by job card and stage")
	}
}

// Stage completion must not touch an externally managed lifecycle status;
// only closing the last catalog stage completes the card.
func TestJobCardStatusAfterCompletion(t *testing.T) {
	if got := JobCardStatusAfterCompletion(models.JobCardOnHold, false); got != models.JobCardOnHold {
		t.Errorf("mid-run completion should leave on_hold alone, got %s", got)
	}
	if got := JobCardStatusAfterCompletion(models.JobCardCancelled, false); got != models.JobCardCancelled {
		t.Errorf("mid-run completion should leave cancelled alone, got %s", got)
	}
	if got := JobCardStatusAfterCompletion(models.JobCardInProgress, true); got != models.JobCardCompleted {
		t.Errorf("final completion should close the card, got %s", got)
	}
}
