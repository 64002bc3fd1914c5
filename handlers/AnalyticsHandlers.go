package handlers

import (
	"database/sql"
	"jewelerp/models"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetAnalytics godoc
// @Summary      Get production analytics
// @Description  Returns job card status distribution, inquiry category distribution and a 6-month inquiry/jobcard trend. Data only; charts are rendered by the client.
// @Tags         analytics
// @Produce      json
// @Param        Authorization  header  string  true  "Session ID"
// @Success      200  {object}  object
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/analytics [get]
func GetAnalytics(db *sql.DB) gin.HandlerFunc {
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

		statusDist, err := countGroups(db, `SELECT status, COUNT(*) FROM jobcards GROUP BY status ORDER BY COUNT(*) DESC`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load status distribution"})
			return
		}

		categoryDist, err := countGroups(db, `
			SELECT COALESCE(product_category, 'unspecified'), COUNT(*)
			FROM inquiries GROUP BY product_category ORDER BY COUNT(*) DESC`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load category distribution"})
			return
		}

		trend, err := monthlyTrend(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load monthly trend"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status_distribution":   statusDist,
			"category_distribution": categoryDist,
			"monthly_trend":         trend,
		})
	}
}

func countGroups(db *sql.DB, query string) ([]models.CategoryCount, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []models.CategoryCount{}
	for rows.Next() {
		var cc models.CategoryCount
		if err := rows.Scan(&cc.Name, &cc.Value); err != nil {
			return nil, err
		}
		counts = append(counts, cc)
	}
	return counts, rows.Err()
}

// monthlyTrend counts inquiries and job cards per month for the last six
// months, padding months with no activity so the chart axis stays continuous.
func monthlyTrend(db *sql.DB) ([]models.MonthlyTrendPoint, error) {
	start := time.Now().AddDate(0, -5, 0)
	start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)

	byMonth := map[string]*models.MonthlyTrendPoint{}
	order := []string{}
	for i := 0; i < 6; i++ {
		m := start.AddDate(0, i, 0)
		key := m.Format("2006-01")
		byMonth[key] = &models.MonthlyTrendPoint{Month: m.Format("Jan")}
		order = append(order, key)
	}

	query := `
		SELECT TO_CHAR(created_at, 'YYYY-MM'), 'inquiry', COUNT(*)
		FROM inquiries WHERE created_at >= $1 GROUP BY 1
		UNION ALL
		SELECT TO_CHAR(created_at, 'YYYY-MM'), 'jobcard', COUNT(*)
		FROM jobcards WHERE created_at >= $1 GROUP BY 1`

	rows, err := db.Query(query, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, kind string
		var count int
		if err := rows.Scan(&key, &kind, &count); err != nil {
			return nil, err
		}
		point, ok := byMonth[key]
		if !ok {
			continue
		}
		if kind == "inquiry" {
			point.Inquiries = count
		} else {
			point.Jobcards = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	trend := make([]models.MonthlyTrendPoint, 0, len(order))
	for _, key := range order {
		trend = append(trend, *byMonth[key])
	}
	return trend, nil
}
