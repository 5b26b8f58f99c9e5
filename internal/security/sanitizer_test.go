package security

import (
	"strings"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "BMS Longhook", "BMS Longhook"},
		{"strips tags", "<script>alert(1)</script>Longhook", "Longhook"},
		{"strips nul bytes", "Long\x00hook", "Longhook"},
		{"trims whitespace", "  Longhook  ", "Longhook"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClampText(t *testing.T) {
	if _, err := ClampText(strings.Repeat("a", 101), 100); err == nil {
		t.Error("overlong input passed")
	}
	got, err := ClampText("  ok  ", 100)
	if err != nil || got != "ok" {
		t.Errorf("ClampText = %q, %v; want ok, nil", got, err)
	}
	got, err = ClampText("", 100)
	if err != nil || got != "" {
		t.Errorf("blank input: got %q, %v; want empty, nil", got, err)
	}
}

func TestValidateShipName(t *testing.T) {
	if _, err := ValidateShipName(""); err == nil {
		t.Error("empty name passed")
	}
	if _, err := ValidateShipName("   "); err == nil {
		t.Error("whitespace-only name passed")
	}
	if _, err := ValidateShipName(strings.Repeat("x", 65)); err == nil {
		t.Error("65-char name passed")
	}
	got, err := ValidateShipName(" BMS Longhook ")
	if err != nil || got != "BMS Longhook" {
		t.Errorf("ValidateShipName = %q, %v", got, err)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"https ok", "https://cdn.example.com/ship.png", "https://cdn.example.com/ship.png", false},
		{"http ok", "http://example.com/a.png", "http://example.com/a.png", false},
		{"blank clears", "", "", false},
		{"javascript scheme", "javascript:alert(1)", "", true},
		{"no host", "https://", "", true},
		{"relative path", "/ship.png", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
