package codes

import "testing"

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"editor", "EDITOR"},
		{"EDITOR", "EDITOR"},
		{"post producer", "POST_PRODUCER"},
		{"Post-Producer", "POST_PRODUCER"},
		{"  colorist  ", "COLORIST"},
		{"vfx//supervisor", "VFX_SUPERVISOR"},
		{"--editor--", "EDITOR"},
		{"", ""},
		{"   ", ""},
		{"a  b   c", "A_B_C"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeRole(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeOrgCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ASTR", "ASTR"},
		{"astr", "ASTR"},
		{" as-tr ", "ASTR"},
		{"a.s.t.r.1", "ASTR1"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeOrgCode(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeOrgCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
