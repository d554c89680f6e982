package biz

import "testing"

func TestCleanPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+63 917 123 4567", "+639171234567"},
		{"(0917) 123-4567", "09171234567"},
		{"0917.123.4567", "09171234567"},
		{"+639171234567", "+639171234567"},
	}
	for _, tt := range tests {
		if got := CleanPhone(tt.in); got != tt.want {
			t.Errorf("CleanPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidPhone(t *testing.T) {
	valid := []string{"+639171234567", "0917 123 4567", "1234567", "+5215512345678"}
	for _, p := range valid {
		if !ValidPhone(p) {
			t.Errorf("ValidPhone(%q) = false, want true", p)
		}
	}
	invalid := []string{"", "123456", "not-a-phone", "+1234567890123456", "0917x1234567"}
	for _, p := range invalid {
		if ValidPhone(p) {
			t.Errorf("ValidPhone(%q) = true, want false", p)
		}
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"buyer@example.com", "a.b+c@mail.co.id"}
	for _, e := range valid {
		if !ValidEmail(e) {
			t.Errorf("ValidEmail(%q) = false, want true", e)
		}
	}
	invalid := []string{"", "no-at.example.com", "two@@example.com", "spaces in@example.com", "trailing@dotless"}
	for _, e := range invalid {
		if ValidEmail(e) {
			t.Errorf("ValidEmail(%q) = true, want false", e)
		}
	}
}

func TestValidCoordinate(t *testing.T) {
	tests := []struct {
		lat, lng float64
		want     bool
	}{
		{0, 0, true},
		{14.5995, 120.9842, true},
		{-90, -180, true},
		{90, 180, true},
		{90.01, 0, false},
		{-90.01, 0, false},
		{0, 180.01, false},
		{0, -180.01, false},
	}
	for _, tt := range tests {
		if got := ValidCoordinate(tt.lat, tt.lng); got != tt.want {
			t.Errorf("ValidCoordinate(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
		}
	}
}
