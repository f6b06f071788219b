package util

import (
	"reflect"
	"testing"
)

func TestSplitTerms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty string", "", nil},
		{"single term", "survey", []string{"survey"}},
		{"trims and lowers", "  Survey , ROOF ", []string{"survey", "roof"}},
		{"drops empty terms", "a,,b,", []string{"a", "b"}},
		{"only commas", ",,,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SplitTerms(tt.input)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("SplitTerms(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestMatchStrings(t *testing.T) {
	tests := []struct {
		name     string
		filter   string
		values   []string
		expected bool
	}{
		{"empty filter matches", "", []string{"anything"}, true},
		{"empty filter no values", "", nil, true},
		{"single term match", "roof", []string{"Roof Survey"}, true},
		{"single term miss", "bridge", []string{"Roof Survey"}, false},
		{"case insensitive", "ROOF", []string{"roof survey"}, true},
		{"all terms must match", "roof,survey", []string{"Roof Survey"}, true},
		{"one term missing", "roof,bridge", []string{"Roof Survey"}, false},
		{"terms across values", "roof,draft", []string{"Roof Survey", "draft"}, true},
		{"no values", "roof", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MatchStrings(tt.filter, tt.values...)
			if result != tt.expected {
				t.Errorf("MatchStrings(%q, %v) = %v, want %v", tt.filter, tt.values, result, tt.expected)
			}
		})
	}
}

func TestJoinNotEmpty(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected string
	}{
		{"empty", nil, ""},
		{"all empty", []string{"", ""}, ""},
		{"skips empties", []string{"Plan", "", "Destination"}, "Plan / Destination"},
		{"single", []string{"Plan"}, "Plan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := JoinNotEmpty(tt.values, " / ")
			if result != tt.expected {
				t.Errorf("JoinNotEmpty(%v) = %q, want %q", tt.values, result, tt.expected)
			}
		})
	}
}
