package devpost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectURL(t *testing.T) {
	assert.Equal(t, "https://devpost.com/software/fridge-friend", ProjectURL(DefaultBaseURL, "fridge-friend"))
	assert.Equal(t, "http://localhost/software/a%2Fb", ProjectURL("http://localhost/", "a/b"))
}

func TestSearchURL(t *testing.T) {
	assert.Equal(t,
		"https://devpost.com/software/search?page=2&query=smart+fridge",
		SearchURL(DefaultBaseURL, "smart fridge", 2))
}

func TestIsProjectURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://devpost.com/software/fridge-friend", true},
		{"https://www.devpost.com/software/fridge-friend", true},
		{"  https://devpost.com/x  ", true},
		{"https://devpost.com/", false},
		{"http://devpost.com/software/x", false},
		{"https://evil.com/devpost.com/x", false},
		{"fridge-friend", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProjectURL(tt.in))
		})
	}
}

func TestProjectIDFromURL(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		wantID string
		wantOK bool
	}{
		{"software path", "https://devpost.com/software/fridge-friend", "fridge-friend", true},
		{"trailing slash", "https://devpost.com/software/fridge-friend/", "fridge-friend", true},
		{"query ignored", "https://devpost.com/software/fridge-friend?ref=x", "fridge-friend", true},
		{"single segment", "https://fridge-friend.devpost.com/fridge-friend", "fridge-friend", true},
		{"no id", "https://devpost.com/software", "", false},
		{"deep path", "https://devpost.com/hackathons/2024/winners", "", false},
		{"not a url", "fridge-friend", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ProjectIDFromURL(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
