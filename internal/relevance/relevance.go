// Package relevance implements keyword-based categorization, tagging and
// relevance filtering for aggregated news items.
package relevance

import (
	"strings"

	"prepwise/internal/core"
)

// categoryKeywords maps a title keyword onto a category. Checked in the
// order declared in categoryOrder; first category with a match wins.
var categoryKeywords = map[core.Category][]string{
	core.CategoryHiring:      {"hiring", "job", "jobs", "career", "recruit", "interview"},
	core.CategoryLayoffs:     {"layoff", "layoffs", "laid off", "fired", "cuts", "downsizing"},
	core.CategoryInternships: {"internship", "internships", "intern"},
	core.CategoryProjects:    {"launch", "launches", "launched", "release", "releases", "released", "project", "open source", "open-source"},
}

var categoryOrder = []core.Category{
	core.CategoryHiring,
	core.CategoryLayoffs,
	core.CategoryInternships,
	core.CategoryProjects,
}

// techKeywords is the relevance vocabulary: an item in the generic tech
// bucket is kept only when its title contains one of these.
var techKeywords = []string{
	"ai", "ml", "machine learning", "llm", "gpt", "software", "developer",
	"engineer", "engineering", "programming", "code", "coding", "tech",
	"startup", "cloud", "data", "api", "open source", "security", "web",
	"app", "framework", "database", "kubernetes", "devops", "frontend",
	"backend", "algorithm", "compiler", "linux",
}

// tagVocabulary is the fixed technology/company vocabulary scanned against
// titles to derive tags.
var tagVocabulary = []string{
	"ai", "python", "javascript", "typescript", "golang", "rust", "java",
	"react", "node", "kubernetes", "docker", "aws", "azure", "gcp",
	"google", "microsoft", "amazon", "meta", "apple", "openai", "nvidia",
	"linux", "postgres", "redis", "graphql", "swift", "kotlin", "android",
	"ios", "blockchain", "database", "security", "devops", "startup",
}

// maxTags caps the number of tags per item.
const maxTags = 5

// Categorize derives a category from keyword matches against the title.
// Titles matching nothing specific land in the generic tech bucket.
func Categorize(title string) core.Category {
	lower := strings.ToLower(title)
	for _, cat := range categoryOrder {
		for _, kw := range categoryKeywords[cat] {
			if containsWord(lower, kw) {
				return cat
			}
		}
	}
	return core.CategoryTech
}

// CategoryForCommunity maps a forum community name onto a category, falling
// back to the title-based heuristic when the community is not recognizable.
func CategoryForCommunity(community, title string) core.Category {
	switch strings.ToLower(community) {
	case "cscareerquestions", "experienceddevs":
		return core.CategoryHiring
	case "csmajors":
		return core.CategoryInternships
	case "layoffs":
		return core.CategoryLayoffs
	case "sideproject", "coolgithubprojects":
		return core.CategoryProjects
	}
	return Categorize(title)
}

// ExtractTags scans the title against the fixed vocabulary, capped at 5.
func ExtractTags(title string) []string {
	lower := strings.ToLower(title)
	var tags []string
	for _, kw := range tagVocabulary {
		if containsWord(lower, kw) {
			tags = append(tags, kw)
			if len(tags) == maxTags {
				break
			}
		}
	}
	return tags
}

// IsRelevant reports whether an item belongs in the aggregated feed. Items
// in a specific category always pass; generic tech items need a tech
// keyword in the title.
func IsRelevant(item core.NewsItem) bool {
	if item.Category != core.CategoryTech {
		return true
	}
	lower := strings.ToLower(item.Title)
	for _, kw := range techKeywords {
		if containsWord(lower, kw) {
			return true
		}
	}
	return false
}

// containsWord reports whether lower contains kw on word boundaries.
// Substring matching alone tags "brain" with "ai"; boundary checks avoid
// that without pulling in a tokenizer.
func containsWord(lower, kw string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		beforeOK := start == 0 || !isAlnum(lower[start-1])
		afterOK := end == len(lower) || !isAlnum(lower[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
		if idx >= len(lower) {
			return false
		}
	}
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 'A' && b <= 'Z'
}
