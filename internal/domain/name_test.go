package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"  Living Room  ", "Living Room", nil},
		{"", "", ErrNameEmpty},
		{"   ", "", ErrNameEmpty},
		{strings.Repeat("a", 100), strings.Repeat("a", 100), nil},
		{strings.Repeat("a", 101), "", ErrNameTooLong},
		{strings.Repeat("ż", 100), strings.Repeat("ż", 100), nil},
	}
	for _, tt := range tests {
		got, err := NormalizeName(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("NormalizeName(%q) err = %v, want %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
