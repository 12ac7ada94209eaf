package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cast-press/services"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Tech News", "tech-news"},
		{"punctuation dropped", "What's New? (2024 Edition)", "whats-new-2024-edition"},
		{"underscores and repeats", "a__b  -- c", "a-b-c"},
		{"leading and trailing noise", "  --Hello--  ", "hello"},
		{"already a slug", "tech-news", "tech-news"},
		{"empty", "", ""},
		{"only symbols", "!!!", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := services.Slugify(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, services.Slugify(got), "must be idempotent")
		})
	}
}
