package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"apostrophe dropped", "Joe's Auto Repair", "joes-auto-repair"},
		{"lowercased", "ACME PARTS", "acme-parts"},
		{"whitespace collapsed", "  Big   Shop  ", "big-shop"},
		{"hyphens preserved", "A-1 Auto", "a-1-auto"},
		{"underscores become hyphens", "east_bay_garage", "east-bay-garage"},
		{"punctuation stripped", "Smith & Sons, Inc.", "smith-sons-inc"},
		{"digits kept", "24/7 Towing", "247-towing"},
		{"nothing usable", "!!!", "shop"},
		{"empty", "", "shop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
