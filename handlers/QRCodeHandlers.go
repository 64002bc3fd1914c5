package handlers

import (
	"bytes"
	"database/sql"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

const qrSize = 256

// drawLabel centers a line of text at the given baseline y.
func drawLabel(img *image.RGBA, text string, y int) {
	face := inconsolata.Bold8x16
	width := len(text) * 8
	x := (img.Bounds().Dx() - width) / 2
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// GetJobCardQRCode godoc
// @Summary      Get a printable QR label for a job card
// @Description  Renders a JPEG label: QR code encoding the job card ID with the job card number and client name printed underneath.
// @Tags         qrcode
// @Produce      image/jpeg
// @Param        Authorization  header  string  true  "Session ID"
// @Param        id             path    string  true  "Job card ID"
// @Success      200  {file}    file
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/jobcards/{id}/qrcode [get]
func GetJobCardQRCode(db *sql.DB) gin.HandlerFunc {
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
		var jobcardNo, clientName string
		err := db.QueryRow(`
			SELECT j.jobcard_no, COALESCE(i.client_name, '')
			FROM jobcards j
			LEFT JOIN inquiries i ON j.inquiry_id = i.id
			WHERE j.id = $1`, jobcardID).Scan(&jobcardNo, &clientName)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Job card not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load job card"})
			return
		}

		qr, err := qrcode.New(jobcardID, qrcode.Medium)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
			return
		}
		qrImg := qr.Image(qrSize)

		// Label area below the QR code for the number and client name
		labelHeight := 48
		canvas := image.NewRGBA(image.Rect(0, 0, qrSize, qrSize+labelHeight))
		draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
		draw.Draw(canvas, qrImg.Bounds(), qrImg, image.Point{}, draw.Over)

		drawLabel(canvas, jobcardNo, qrSize+18)
		if clientName != "" {
			drawLabel(canvas, clientName, qrSize+38)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 90}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode label"})
			return
		}

		c.Header("Content-Type", "image/jpeg")
		c.Header("Content-Disposition", "inline; filename="+jobcardNo+".jpg")
		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
	}
}
