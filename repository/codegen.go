package repository

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateInquiryID produces a human-readable inquiry number of the form
// INQ-<unix seconds>-<5 char code>. The random suffix avoids collisions when
// two inquiries land in the same second.
func GenerateInquiryID() string {
	code := make([]byte, 5)
	for i := range code {
		code[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return fmt.Sprintf("INQ-%d-%s", time.Now().Unix(), string(code))
}

// GenerateJobCardNo formats a job card number as JC-<year>-<zero padded seq>.
func GenerateJobCardNo(year, seq int) string {
	return fmt.Sprintf("JC-%d-%04d", year, seq)
}

// IsJobCardNo reports whether s looks like a generated job card number.
// Used by search to decide between number and client-name matching.
func IsJobCardNo(s string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(s)), "JC-")
}
