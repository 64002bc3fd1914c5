package repository

import (
	"regexp"
	"testing"
)

func TestGenerateInquiryIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^INQ-\d{10}-[A-Z2-9]{5}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := GenerateInquiryID()
		if !pattern.MatchString(id) {
			t.Fatalf("bad inquiry id format: %s", id)
		}
		seen[id] = true
	}
	if len(seen) < 2 {
		t.Error("inquiry ids should vary across calls")
	}
}

func TestGenerateJobCardNo(t *testing.T) {
	if got := GenerateJobCardNo(2026, 42); got != "JC-2026-0042" {
		t.Errorf("got %s, want JC-2026-0042", got)
	}
	if got := GenerateJobCardNo(2026, 12345); got != "JC-2026-12345" {
		t.Errorf("got %s, want JC-2026-12345", got)
	}
}

func TestIsJobCardNo(t *testing.T) {
	if !IsJobCardNo("JC-2026-0042") || !IsJobCardNo("  jc-2026-1") {
		t.Error("JC-prefixed strings should match")
	}
	if IsJobCardNo("INQ-1736941200-AB123") || IsJobCardNo("Meera Shah") {
		t.Error("non job card numbers should not match")
	}
}
