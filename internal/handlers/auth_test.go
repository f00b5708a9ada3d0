package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSafeRedirect(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"local path", "/upload", "/upload"},
		{"local path with query", "/images?page=2", "/images?page=2"},
		{"empty", "", "/"},
		{"absolute url", "http://evil.example/", "/"},
		{"protocol relative", "//evil.example", "/"},
		{"backslash protocol relative", "/\\evil.example", "/"},
		{"relative path", "images", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, safeRedirect(tt.target))
		})
	}
}
