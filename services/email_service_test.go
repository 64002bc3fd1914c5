package services

import (
	"strings"
	"testing"
)

func TestHtmlToText(t *testing.T) {
	text := htmlToText(`<html><body><h2>Dear Meera,</h2><p>Your inquiry <strong>INQ-1</strong> has been accepted.</p></body></html>`)
	for _, want := range []string{"Dear Meera,", "Your inquiry", "INQ-1", "has been accepted."} {
		if !strings.Contains(text, want) {
			t.Errorf("plain text missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "<") {
		t.Errorf("plain text should carry no tags:\n%s", text)
	}
}
