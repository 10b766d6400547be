package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean name untouched", "Reservation_2024_10_13_SVW_100.pdf", "Reservation_2024_10_13_SVW_100.pdf"},
		{"storage-invalid characters removed", `Reservation<>:"/\|?*_100.pdf`, "Reservation_100.pdf"},
		{"control characters removed", "Reser\x00vation\x1f_100.pdf", "Reservation_100.pdf"},
		{"whitespace collapsed", "Reservation  2024\t10  13.pdf", "Reservation 2024 10 13.pdf"},
		{"dots and spaces trimmed", " .Reservation_100.pdf. ", "Reservation_100.pdf"},
		{"reserved device name prefixed", "CON.pdf", "_CON.pdf"},
		{"reserved device name case-insensitive", "nul.pdf", "_nul.pdf"},
		{"non-reserved keeps name", "CONFIG.pdf", "CONFIG.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := strings.Repeat("a", 300) + ".pdf"
	got := SanitizeFilename(long)
	assert.Len(t, []rune(got), 255)
}

func TestSanitizeFilenameIdempotent(t *testing.T) {
	inputs := []string{
		"Reservation_2024_10_13_SV Würenlos_100.pdf",
		`bad<name>..  with   spaces.pdf`,
		"CON.pdf",
		strings.Repeat("x", 254) + " .pdf",
		" . . leading.pdf",
	}
	for _, in := range inputs {
		once := SanitizeFilename(in)
		assert.Equal(t, once, SanitizeFilename(once), "input %q", in)
	}
}

func TestBuildCleanFilename(t *testing.T) {
	records, err := NewClassifier(nil).Classify(sampleConfirmation)
	if err != nil {
		t.Fatalf("classify sample: %v", err)
	}
	for _, r := range records {
		assert.True(t, strings.HasPrefix(r.CleanFilename, "Reservation_"))
		assert.True(t, strings.HasSuffix(r.CleanFilename, ".pdf"))
		assert.Contains(t, r.CleanFilename, DateToken(r.Date))
	}
}
