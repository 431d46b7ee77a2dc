// slug_test.go

package main

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var slugShape = regexp.MustCompile(`^[a-z0-9-]+-\d+$`)

func TestGenerateSlugShape(t *testing.T) {
	names := []string{
		"Wireless Mouse",
		"Tea & Coffee",
		"  Padded   Jacket  ",
		"100% Cotton T-Shirt!",
		"Ämber Vase", // non-ascii letters are stripped
	}
	for _, name := range names {
		slug := generateSlug(name)
		assert.Regexp(t, slugShape, slug, "name %q", name)
	}
}

func TestGenerateSlugTransformations(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"Wireless Mouse", "wireless-mouse-"},
		{"Tea & Coffee", "tea-and-coffee-"},
		{"  Padded   Jacket  ", "padded-jacket-"},
		{"100% Cotton T-Shirt!", "100-cotton-t-shirt-"},
		{"a---b", "a-b-"},
	}
	for _, tt := range tests {
		slug := generateSlug(tt.name)
		assert.True(t, strings.HasPrefix(slug, tt.prefix),
			"generateSlug(%q) = %q, want prefix %q", tt.name, slug, tt.prefix)
	}
}

func TestGenerateSlugEmptyName(t *testing.T) {
	slug := generateSlug("")
	assert.Regexp(t, `^\d+$`, slug)

	// nothing but stripped characters behaves like an empty name
	slug = generateSlug("!!!")
	assert.Regexp(t, `^\d+$`, slug)
}

func TestGenerateSlugUniqueAcrossTime(t *testing.T) {
	first := generateSlug("Wireless Mouse")
	time.Sleep(2 * time.Millisecond)
	second := generateSlug("Wireless Mouse")
	assert.NotEqual(t, first, second)
}
