package handlers

import (
	"database/sql"
	"fmt"
	"jewelerp/models"
	"jewelerp/repository"
	"jewelerp/storage"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

func pdfHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Jewel ERP", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func pdfKeyValue(pdf *gofpdf.Fpdf, key, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(50, 7, key, "1", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(130, 7, value, "1", 1, "L", false, 0, "")
}

func formatMetric(pcs *int, weight *float64) (string, string) {
	pcsStr, weightStr := "-", "-"
	if pcs != nil {
		pcsStr = fmt.Sprintf("%d", *pcs)
	}
	if weight != nil {
		weightStr = fmt.Sprintf("%.3f g", *weight)
	}
	return pcsStr, weightStr
}

// GenerateJobCardPDF godoc
// @Summary      Download a job card as PDF
// @Description  Renders the job card header, inquiry details and the full stage table with recorded metrics and handover names.
// @Tags         pdf
// @Produce      application/pdf
// @Param        Authorization  header  string  true  "Session ID"
// @Param        id             path    string  true  "Job card ID"
// @Success      200  {file}    file
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/jobcards/{id}/pdf [get]
func GenerateJobCardPDF(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		jobcardID := c.Param("id")
		jobcard, err := storage.GetJobCard(db, jobcardID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Job card not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load job card"})
			return
		}

		stages, err := storage.ListStagesByCategory(db, jobcard.ProductCategory)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stage catalog"})
			return
		}
		entries, err := storage.GetStageEntries(db, jobcardID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stage tracking"})
			return
		}

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdfHeader(pdf, "Job Card "+jobcard.JobcardNo)

		pdfKeyValue(pdf, "Client", jobcard.ClientName)
		pdfKeyValue(pdf, "Inquiry No", jobcard.InquiryNo)
		pdfKeyValue(pdf, "Category", titleCaser.String(jobcard.ProductCategory))
		pdfKeyValue(pdf, "Order Type", titleCaser.String(jobcard.OrderType))
		pdfKeyValue(pdf, "Status", titleCaser.String(jobcard.Status))
		if jobcard.CurrentStage != "" {
			pdfKeyValue(pdf, "Current Stage", jobcard.CurrentStage)
		}
		pdfKeyValue(pdf, "Created", jobcard.CreatedAt.Format("02 Jan 2006"))
		pdf.Ln(6)

		// Stage table
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		headers := []struct {
			label string
			width float64
		}{
			{"#", 8}, {"Stage", 35}, {"Department", 28}, {"Status", 22},
			{"Pcs In", 16}, {"Pcs Out", 16}, {"Wt In", 20}, {"Wt Out", 20}, {"Handover", 25},
		}
		for _, h := range headers {
			pdf.CellFormat(h.width, 7, h.label, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, row := range repository.BuildStageRows(stages, entries) {
			pcsIn, wtIn := "-", "-"
			pcsOut, wtOut := "-", "-"
			handover := "-"
			if row.Entry != nil {
				pcsIn, wtIn = formatMetric(row.Entry.PcsIn, row.Entry.WeightIn)
				pcsOut, wtOut = formatMetric(row.Entry.PcsOut, row.Entry.WeightOut)
				if row.Entry.HandoverPersonName != "" {
					handover = row.Entry.HandoverPersonName
				}
			}
			pdf.CellFormat(8, 7, fmt.Sprintf("%d", row.Definition.StageOrder), "1", 0, "C", false, 0, "")
			pdf.CellFormat(35, 7, row.Definition.StageName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(28, 7, row.Definition.Department, "1", 0, "L", false, 0, "")
			pdf.CellFormat(22, 7, titleCaser.String(row.Status), "1", 0, "C", false, 0, "")
			pdf.CellFormat(16, 7, pcsIn, "1", 0, "C", false, 0, "")
			pdf.CellFormat(16, 7, pcsOut, "1", 0, "C", false, 0, "")
			pdf.CellFormat(20, 7, wtIn, "1", 0, "C", false, 0, "")
			pdf.CellFormat(20, 7, wtOut, "1", 0, "C", false, 0, "")
			pdf.CellFormat(25, 7, handover, "1", 1, "L", false, 0, "")
		}

		progress := repository.ComputeProgress(entries)
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 7, fmt.Sprintf("Progress: %d of %d recorded stages completed (%.0f%%)",
			progress.CompletedCount, progress.TotalCount, progress.Percentage), "", 1, "L", false, 0, "")

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", jobcard.JobcardNo))
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		}
	}
}

// GenerateInquiryPDF godoc
// @Summary      Download an inquiry as PDF
// @Tags         pdf
// @Produce      application/pdf
// @Param        Authorization  header  string  true  "Session ID"
// @Param        id             path    string  true  "Inquiry ID"
// @Success      200  {file}    file
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/inquiries/{id}/pdf [get]
func GenerateInquiryPDF(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		inq, err := scanInquiry(db.QueryRow(inquirySelect+` WHERE id = $1`, c.Param("id")))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load inquiry"})
			return
		}

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdfHeader(pdf, "Inquiry "+inq.InquiryID)

		pdfKeyValue(pdf, "Client", inq.ClientName)
		if inq.ClientEmail != "" {
			pdfKeyValue(pdf, "Email", inq.ClientEmail)
		}
		if inq.ClientPhone != "" {
			pdfKeyValue(pdf, "Phone", inq.ClientPhone)
		}
		pdfKeyValue(pdf, "Category", titleCaser.String(inq.ProductCategory))
		pdfKeyValue(pdf, "Quantity", fmt.Sprintf("%d", inq.Quantity))
		if inq.MetalDetails != "" {
			pdfKeyValue(pdf, "Metal", inq.MetalDetails)
		}
		if inq.PolishColor != "" {
			pdfKeyValue(pdf, "Polish", inq.PolishColor)
		}
		if inq.DueDate != nil {
			pdfKeyValue(pdf, "Due Date", inq.DueDate.Format("02 Jan 2006"))
		}
		pdfKeyValue(pdf, "Review Status", titleCaser.String(inq.PMReviewStatus))
		if inq.SpecialInstructions != "" {
			pdf.Ln(4)
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(0, 7, "Special Instructions", "", 1, "L", false, 0, "")
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(0, 6, inq.SpecialInstructions, "1", "L", false)
		}

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", inq.InquiryID))
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		}
	}
}

// GenerateProductionReportPDF godoc
// @Summary      Download a production report as PDF
// @Description  Summarizes job cards created in a date range: counts per status plus a table of cards. Dates default to the last 30 days.
// @Tags         pdf
// @Produce      application/pdf
// @Param        Authorization  header  string  true   "Session ID"
// @Param        from           query   string  false  "Start date (YYYY-MM-DD)"
// @Param        to             query   string  false  "End date (YYYY-MM-DD)"
// @Success      200  {file}    file
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/reports/production/pdf [get]
func GenerateProductionReportPDF(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		to := time.Now()
		from := to.AddDate(0, 0, -30)
		if v := c.Query("from"); v != "" {
			parsed, err := time.Parse("2006-01-02", v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, expected YYYY-MM-DD"})
				return
			}
			from = parsed
		}
		if v := c.Query("to"); v != "" {
			parsed, err := time.Parse("2006-01-02", v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date, expected YYYY-MM-DD"})
				return
			}
			to = parsed.AddDate(0, 0, 1)
		}

		rows, err := db.Query(`
			SELECT j.jobcard_no, COALESCE(i.client_name, ''), j.product_category,
				   j.status, COALESCE(j.current_stage, ''), j.created_at
			FROM jobcards j
			LEFT JOIN inquiries i ON j.inquiry_id = i.id
			WHERE j.created_at >= $1 AND j.created_at < $2
			ORDER BY j.created_at`, from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load report data"})
			return
		}
		defer rows.Close()

		type reportRow struct {
			jobcardNo, client, category, status, stage string
			created                                    time.Time
		}
		var cards []reportRow
		statusCounts := map[string]int{}
		for rows.Next() {
			var r reportRow
			if err := rows.Scan(&r.jobcardNo, &r.client, &r.category, &r.status, &r.stage, &r.created); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan report data"})
				return
			}
			statusCounts[r.status]++
			cards = append(cards, r)
		}

		pdf := gofpdf.New("L", "mm", "A4", "")
		pdf.AddPage()
		pdfHeader(pdf, fmt.Sprintf("Production Report %s to %s",
			from.Format("02 Jan 2006"), to.AddDate(0, 0, -1).Format("02 Jan 2006")))

		pdf.SetFont("Arial", "B", 10)
		summary := fmt.Sprintf("Total: %d", len(cards))
		for _, status := range []string{models.JobCardInProgress, models.JobCardCompleted, models.JobCardOnHold, models.JobCardCancelled} {
			if n := statusCounts[status]; n > 0 {
				summary += fmt.Sprintf("   %s: %d", titleCaser.String(status), n)
			}
		}
		pdf.CellFormat(0, 8, summary, "", 1, "L", false, 0, "")
		pdf.Ln(3)

		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(35, 7, "Job Card", "1", 0, "C", true, 0, "")
		pdf.CellFormat(60, 7, "Client", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 7, "Category", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 7, "Status", "1", 0, "C", true, 0, "")
		pdf.CellFormat(50, 7, "Current Stage", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 7, "Created", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 9)
		for _, r := range cards {
			pdf.CellFormat(35, 7, r.jobcardNo, "1", 0, "L", false, 0, "")
			pdf.CellFormat(60, 7, r.client, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 7, titleCaser.String(r.category), "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 7, titleCaser.String(r.status), "1", 0, "L", false, 0, "")
			pdf.CellFormat(50, 7, r.stage, "1", 0, "L", false, 0, "")
			pdf.CellFormat(35, 7, r.created.Format("02 Jan 2006"), "1", 1, "L", false, 0, "")
		}

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", "attachment; filename=production-report.pdf")
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		}
	}
}
