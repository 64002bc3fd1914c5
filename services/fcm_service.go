package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"
)

// FCM HTTP v1 push service. Credentials come from a Firebase service account
// JSON file pointed at by FCM_CREDENTIALS_FILE; FCM_PROJECT_ID names the
// Firebase project. When either is unset, push delivery is skipped silently.

const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

var (
	fcmOnce   sync.Once
	fcmSource oauth2.TokenSource
	fcmErr    error
)

type serviceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

func tokenSource() (oauth2.TokenSource, error) {
	fcmOnce.Do(func() {
		credFile := os.Getenv("FCM_CREDENTIALS_FILE")
		if credFile == "" {
			fcmErr = fmt.Errorf("FCM_CREDENTIALS_FILE not set")
			return
		}

		data, err := os.ReadFile(credFile)
		if err != nil {
			fcmErr = fmt.Errorf("failed to read FCM credentials: %v", err)
			return
		}

		var sa serviceAccount
		if err := json.Unmarshal(data, &sa); err != nil {
			fcmErr = fmt.Errorf("failed to parse FCM credentials: %v", err)
			return
		}

		conf := &jwt.Config{
			Email:      sa.ClientEmail,
			PrivateKey: []byte(sa.PrivateKey),
			Scopes:     []string{fcmScope},
			TokenURL:   sa.TokenURI,
		}
		fcmSource = conf.TokenSource(context.Background())
	})
	return fcmSource, fcmErr
}

type fcmMessage struct {
	Message struct {
		Token        string            `json:"token"`
		Notification map[string]string `json:"notification"`
		Data         map[string]string `json:"data,omitempty"`
	} `json:"message"`
}

// SendPushToToken delivers one notification to one device token.
func SendPushToToken(token, title, body string, data map[string]string) error {
	projectID := os.Getenv("FCM_PROJECT_ID")
	if projectID == "" {
		return nil
	}

	src, err := tokenSource()
	if err != nil {
		return err
	}
	accessToken, err := src.Token()
	if err != nil {
		return fmt.Errorf("failed to obtain FCM access token: %v", err)
	}

	var msg fcmMessage
	msg.Message.Token = token
	msg.Message.Notification = map[string]string{"title": title, "body": body}
	msg.Message.Data = data

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", projectID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("FCM send failed (%d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// pushToRole sends the notification to every registered device of users
// holding the given role.
func pushToRole(db *sql.DB, role, title, body string, data map[string]string) error {
	rows, err := db.Query(`
		SELECT u.fcm_token
		FROM users u
		JOIN roles r ON u.role_id = r.role_id
		WHERE r.role_name = $1 AND u.fcm_token IS NOT NULL AND u.fcm_token <> '' AND NOT u.suspended`,
		role)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return err
		}
		if err := SendPushToToken(token, title, body, data); err != nil {
			log.Printf("Push to %s device failed: %v", role, err)
		}
	}
	return rows.Err()
}

// NotifyStageCompleted tells production managers a stage was completed, and
// announces job card completion when the last stage closes.
func NotifyStageCompleted(db *sql.DB, jobcardNo, stageName string, allDone bool) error {
	title := "Stage completed"
	body := fmt.Sprintf("%s: %s completed", jobcardNo, stageName)
	if allDone {
		title = "Job card completed"
		body = fmt.Sprintf("%s finished its final stage (%s)", jobcardNo, stageName)
	}
	return pushToRole(db, "production_manager", title, body, map[string]string{
		"jobcard_no": jobcardNo,
		"stage_name": stageName,
	})
}

func inquiryDecisionNotification(inquiryNo, jobcardNo string, cancelled bool) (string, string) {
	if cancelled {
		return "Inquiry cancelled", fmt.Sprintf("%s was cancelled", inquiryNo)
	}
	return "Inquiry continued", fmt.Sprintf("%s continued as %s", inquiryNo, jobcardNo)
}

// NotifyInquiryDecision announces a review decision to production manager
// devices. A continued inquiry names the job card it became.
func NotifyInquiryDecision(db *sql.DB, inquiryNo, jobcardNo string, cancelled bool) error {
	title, body := inquiryDecisionNotification(inquiryNo, jobcardNo, cancelled)
	data := map[string]string{"inquiry_id": inquiryNo}
	if jobcardNo != "" {
		data["jobcard_no"] = jobcardNo
	}
	return pushToRole(db, "production_manager", title, body, data)
}

// NotifyNewInquiry tells production managers a new inquiry is waiting for review.
func NotifyNewInquiry(db *sql.DB, inquiryID, clientName string) error {
	return pushToRole(db, "production_manager", "New inquiry",
		fmt.Sprintf("%s from %s awaits review", inquiryID, clientName),
		map[string]string{"inquiry_id": inquiryID})
}
