package services

import (
	"fmt"
	"jewelerp/models"
	"log"
	"net/smtp"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// EmailConfig holds SMTP settings loaded from the environment.
type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func loadEmailConfig() EmailConfig {
	return EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

// htmlToText strips tags from an HTML body to produce the plain-text
// alternative part of the message.
func htmlToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return sb.String()
}

func sendEmail(to, subject, htmlBody string) error {
	cfg := loadEmailConfig()
	if cfg.Host == "" || cfg.From == "" {
		log.Printf("SMTP not configured, skipping email to %s", to)
		return nil
	}

	textBody := htmlToText(htmlBody)
	boundary := "jewelerp-alt-boundary"

	var msg strings.Builder
	msg.WriteString("From: " + cfg.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: multipart/alternative; boundary=" + boundary + "\r\n\r\n")
	msg.WriteString("--" + boundary + "\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(textBody + "\r\n")
	msg.WriteString("--" + boundary + "\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.WriteString(htmlBody + "\r\n")
	msg.WriteString("--" + boundary + "--\r\n")

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	return smtp.SendMail(cfg.Host+":"+cfg.Port, auth, cfg.From, []string{to}, []byte(msg.String()))
}

// SendInquiryDecisionEmail notifies the client of the production manager's
// decision on their inquiry. A missing client email is not an error.
func SendInquiryDecisionEmail(inq *models.Inquiry, decision, reason string) error {
	if inq.ClientEmail == "" {
		return nil
	}

	var subject, body string
	if decision == models.InquiryCancelled {
		subject = fmt.Sprintf("Inquiry %s could not proceed", inq.InquiryID)
		body = fmt.Sprintf(`
			<html><body>
			<h2>Dear %s,</h2>
			<p>We are sorry to inform you that your inquiry <strong>%s</strong> could not proceed to production.</p>
			<p><strong>Reason:</strong> %s</p>
			<p>Please contact our sales team if you would like to discuss alternatives.</p>
			<p>Warm regards,<br/>The Jewel ERP Team</p>
			</body></html>`,
			html.EscapeString(inq.ClientName), inq.InquiryID, html.EscapeString(reason))
	} else {
		subject = fmt.Sprintf("Inquiry %s accepted for production", inq.InquiryID)
		body = fmt.Sprintf(`
			<html><body>
			<h2>Dear %s,</h2>
			<p>Good news! Your inquiry <strong>%s</strong> has been accepted and a job card has been opened for production.</p>
			<p>We will keep you informed as your piece moves through the workshop.</p>
			<p>Warm regards,<br/>The Jewel ERP Team</p>
			</body></html>`,
			html.EscapeString(inq.ClientName), inq.InquiryID)
	}

	return sendEmail(inq.ClientEmail, subject, body)
}
