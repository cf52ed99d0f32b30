package transfer

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "report.pdf", "report.pdf"},
		{"reserved chars", `con:fig/<1>.txt`, "con_fig__1_.txt"},
		{"backslash and pipe", `a\b|c`, "a_b_c"},
		{"quote and wildcards", `"x"*?.bin`, "_x___.bin"},
		{"surrounding whitespace", "  notes.txt  ", "notes.txt"},
		{"whitespace only", "   ", ""},
		{"empty", "", ""},
		{"separators only", `\/`, "__"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFilename(tc.in); got != tc.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
