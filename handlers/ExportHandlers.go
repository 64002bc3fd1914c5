package handlers

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"jewelerp/storage"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportJobCardsExcel godoc
// @Summary      Export the job card register as Excel
// @Description  Writes all job cards (optionally filtered by status) to an xlsx workbook.
// @Tags         exports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        Authorization  header  string  true   "Session ID"
// @Param        status         query   string  false  "Filter by status"
// @Success      200  {file}    file
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/exports/jobcards [get]
func ExportJobCardsExcel(db *sql.DB) gin.HandlerFunc {
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

		cards, err := storage.ListJobCards(db, c.Query("status"), "")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load job cards"})
			return
		}

		f := excelize.NewFile()
		sheet := "Job Cards"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Job Card No", "Client", "Inquiry No", "Category", "Order Type",
			"Status", "Current Stage", "Pushed To Workshop", "Created"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		headerStyle, _ := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"DDDDDD"}, Pattern: 1},
		})
		f.SetCellStyle(sheet, "A1", "I1", headerStyle)

		for i, card := range cards {
			row := i + 2
			values := []interface{}{
				card.JobcardNo, card.ClientName, card.InquiryNo, card.ProductCategory,
				card.OrderType, card.Status, card.CurrentStage, card.PushedToWorkshop,
				card.CreatedAt.Format("2006-01-02"),
			}
			for j, v := range values {
				cell, _ := excelize.CoordinatesToCellName(j+1, row)
				f.SetCellValue(sheet, cell, v)
			}
		}

		filename := fmt.Sprintf("jobcards-%s.xlsx", time.Now().Format("20060102"))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename="+filename)
		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write workbook"})
		}
	}
}

// ExportInquiriesCSV godoc
// @Summary      Export inquiries as CSV
// @Tags         exports
// @Produce      text/csv
// @Param        Authorization  header  string  true   "Session ID"
// @Param        status         query   string  false  "Filter by pm_review_status"
// @Success      200  {file}    file
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/exports/inquiries [get]
func ExportInquiriesCSV(db *sql.DB) gin.HandlerFunc {
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

		query := `
			SELECT inquiry_id, client_name, COALESCE(client_email, ''), COALESCE(client_phone, ''),
				   COALESCE(product_category, ''), quantity, pm_review_status, created_at
			FROM inquiries WHERE ($1 = '' OR pm_review_status = $1)
			ORDER BY created_at DESC`

		rows, err := db.Query(query, c.Query("status"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load inquiries"})
			return
		}
		defer rows.Close()

		filename := fmt.Sprintf("inquiries-%s.csv", time.Now().Format("20060102"))
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", "attachment; filename="+filename)

		w := csv.NewWriter(c.Writer)
		defer w.Flush()

		w.Write([]string{"Inquiry No", "Client", "Email", "Phone", "Category", "Quantity", "Review Status", "Created"})

		for rows.Next() {
			var inquiryID, client, email, phone, category, status string
			var quantity int
			var created time.Time
			if err := rows.Scan(&inquiryID, &client, &email, &phone, &category, &quantity, &status, &created); err != nil {
				return
			}
			w.Write([]string{
				inquiryID, client, email, phone, category,
				fmt.Sprintf("%d", quantity), status, created.Format("2006-01-02"),
			})
		}
	}
}
