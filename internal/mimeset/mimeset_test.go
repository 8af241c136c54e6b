package mimeset

import (
	"reflect"
	"testing"
)

func TestAddCollapsesDuplicates(t *testing.T) {
	s := New()
	s.Add("image/png")
	s.Add("image/jpeg")
	s.Add("image/png")
	s.Add("  ")

	if s.Len() != 2 {
		t.Errorf("Expected 2 types, got %d", s.Len())
	}
	if !s.Has("image/png") || !s.Has("image/jpeg") {
		t.Errorf("Expected png and jpeg to be present, got %v", s.Values())
	}
	if s.Has("image/gif") {
		t.Error("Expected gif to be absent")
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		name     string
		types    []string
		expected string
	}{
		{name: "empty", types: nil, expected: ""},
		{name: "single", types: []string{"image/png"}, expected: "image/png"},
		{name: "sorted", types: []string{"image/webp", "image/jpeg", "image/png"}, expected: "image/jpeg,image/png,image/webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.types...).Join(","); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestZeroValue(t *testing.T) {
	var s Set
	if s.Len() != 0 || s.Has("image/png") {
		t.Error("Expected zero value to be empty")
	}
	s.Add("image/png")
	s.Add("image/gif")
	if !reflect.DeepEqual(s.Values(), []string{"image/gif", "image/png"}) {
		t.Errorf("Unexpected values %v", s.Values())
	}
}
