package relevance

import (
	"testing"

	"prepwise/internal/core"
)

func TestCategorize(t *testing.T) {
	testCases := []struct {
		title    string
		expected core.Category
	}{
		{"Big Tech Hiring Spree Continues", core.CategoryHiring},
		{"Company announces job cuts amid restructuring", core.CategoryHiring}, // "job" wins, hiring checked first
		{"Startup layoffs hit 10% of staff", core.CategoryLayoffs},
		{"Summer internship applications open", core.CategoryInternships},
		{"New open source project launches today", core.CategoryProjects},
		{"Rust 2.0 released", core.CategoryProjects}, // inflected keyword forms match too
		{"Acme laid off half its platform team", core.CategoryLayoffs},
		{"Quantum computing breakthrough", core.CategoryTech},
		{"", core.CategoryTech},
	}

	for _, tc := range testCases {
		if got := Categorize(tc.title); got != tc.expected {
			t.Errorf("Categorize(%q) = %q, want %q", tc.title, got, tc.expected)
		}
	}
}

func TestCategoryForCommunity(t *testing.T) {
	if got := CategoryForCommunity("cscareerquestions", "anything"); got != core.CategoryHiring {
		t.Errorf("expected hiring for cscareerquestions, got %q", got)
	}
	if got := CategoryForCommunity("csMajors", "anything"); got != core.CategoryInternships {
		t.Errorf("expected internships for csMajors, got %q", got)
	}
	// Unknown community falls back to the title heuristic.
	if got := CategoryForCommunity("programming", "Rust 2.0 released"); got != core.CategoryProjects {
		t.Errorf("expected projects fallback, got %q", got)
	}
}

func TestExtractTags(t *testing.T) {
	tags := ExtractTags("Google releases new AI model built with Rust and Kubernetes on AWS via Docker")
	if len(tags) > 5 {
		t.Errorf("tags must be capped at 5, got %d", len(tags))
	}
	if len(tags) != 5 {
		t.Errorf("expected full 5 tags for keyword-dense title, got %v", tags)
	}

	if tags := ExtractTags("Nothing notable here"); len(tags) != 0 {
		t.Errorf("expected no tags, got %v", tags)
	}
}

func TestExtractTagsWordBoundary(t *testing.T) {
	// "brain" must not match the "ai" keyword.
	for _, tag := range ExtractTags("Brain research update") {
		if tag == "ai" {
			t.Error("substring inside a word should not produce a tag")
		}
	}
}

func TestIsRelevant(t *testing.T) {
	testCases := []struct {
		name     string
		item     core.NewsItem
		expected bool
	}{
		{
			name:     "specific category bypasses keyword filter",
			item:     core.NewsItem{Title: "Random hiring news", Category: core.CategoryHiring},
			expected: true,
		},
		{
			name:     "tech category without keyword is dropped",
			item:     core.NewsItem{Title: "Celebrity gossip roundup", Category: core.CategoryTech},
			expected: false,
		},
		{
			name:     "tech category with keyword is kept",
			item:     core.NewsItem{Title: "New AI Model Launch", Category: core.CategoryTech},
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRelevant(tc.item); got != tc.expected {
				t.Errorf("IsRelevant(%q) = %v, want %v", tc.item.Title, got, tc.expected)
			}
		})
	}
}
