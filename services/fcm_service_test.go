package services

import (
	"strings"
	"testing"
)

func TestInquiryDecisionNotification(t *testing.T) {
	title, body := inquiryDecisionNotification("INQ-1736941200-AB123", "JC-2026-0042", false)
	if title != "Inquiry continued" {
		t.Errorf("continue title: got %q", title)
	}
	if !strings.Contains(body, "INQ-1736941200-AB123") || !strings.Contains(body, "JC-2026-0042") {
		t.Errorf("continue body should name inquiry and job card: %q", body)
	}

	title, body = inquiryDecisionNotification("INQ-1736941200-AB123", "", true)
	if title != "Inquiry cancelled" {
		t.Errorf("cancel title: got %q", title)
	}
	if !strings.Contains(body, "INQ-1736941200-AB123") {
		t.Errorf("cancel body should name the inquiry: %q", body)
	}
}
