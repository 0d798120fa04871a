package site_test

import (
	"testing"

	"sitekeeper/internal/site"
)

func TestChangeSignal_IsEntryPage(t *testing.T) {
	signal := site.NewChangeSignal("index.html")

	tests := []struct {
		filename string
		want     bool
	}{
		{"index.html", true},
		{"Index.HTML", true},
		{"INDEX.html", true},
		{"my_index.html", false},
		{"index.htm", false},
		{"index.html.bak", false},
		{"notes.txt", false},
	}
	for _, tt := range tests {
		if got := signal.IsEntryPage(tt.filename); got != tt.want {
			t.Errorf("IsEntryPage(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}
