package radar

import (
	"regexp"
	"strings"
)

// aiKeywords is the keep-gate: an item survives the filter iff at least one
// of these appears as a substring of its text. Matching is deliberately
// substring-based with no tokenization; "ai" matching inside unrelated words
// is an accepted false-positive trade-off.
var aiKeywords = []string{
	"ai",
	"artificial intelligence",
	"machine learning",
	"deep learning",
	"llm",
	"language model",
	"diffusion",
	"transformer",
	"gpu",
	"datacenter",
	"semiconductor",
	"compute",
	"inference",
	"training",
	"safety",
	"alignment",
	"policy",
	"export control",
	"regulation",
	"chip",
	"nvidia",
	"openai",
	"anthropic",
	"deepmind",
	"xai",
	"agent",
	"benchmark",
	"model release",
	"paper",
}

// TagRule maps a display tag to the keywords that trigger it.
type TagRule struct {
	Tag      string
	Keywords []string
}

// TagRules is ordered; display order of assigned tags follows this table.
var TagRules = []TagRule{
	{"Frontier research", []string{"paper", "benchmark", "model", "research"}},
	{"Products & releases", []string{"launch", "release", "product", "api"}},
	{"Infra & semis", []string{"gpu", "chip", "datacenter", "semiconductor", "nvidia"}},
	{"Agents & tooling", []string{"agent", "tool", "framework", "sdk"}},
	{"Safety & alignment", []string{"safety", "alignment", "eval"}},
	{"Policy & geopolitics", []string{"policy", "regulation", "export control"}},
	{"Markets & investing", []string{"funding", "investment", "market", "valuation"}},
	{"People & org moves", []string{"hiring", "joins", "leaves", "promotion"}},
	{"Energy & Datacenter (Power/Cooling/Grid/Nuclear/Real Estate)", []string{"power", "cooling", "grid", "nuclear", "real estate", "datacenter"}},
	{"AI for Science & Physical World", []string{"biology", "chemistry", "robot", "physics"}},
	{"Data Strategy & Supply", []string{"data", "dataset", "corpus"}},
	{"Edge & On-Device AI", []string{"edge", "on-device", "mobile"}},
}

// FilterResult is the relevance decision for one candidate.
type FilterResult struct {
	Keep    bool
	Tags    []string
	Reasons []string // matched keep-gate keywords
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeText joins the non-empty parts and collapses runs of whitespace.
func NormalizeText(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(strings.Join(nonEmpty, " "), " "))
}

// RuleFilter decides keep/drop and assigns topic tags from free text.
// Tag assignment is independent of the keep decision.
func RuleFilter(text string) FilterResult {
	lower := strings.ToLower(text)

	var reasons []string
	for _, keyword := range aiKeywords {
		if strings.Contains(lower, keyword) {
			reasons = append(reasons, keyword)
		}
	}

	var tags []string
	for _, rule := range TagRules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lower, keyword) {
				tags = append(tags, rule.Tag)
				break
			}
		}
	}

	return FilterResult{
		Keep:    len(reasons) > 0,
		Tags:    tags,
		Reasons: reasons,
	}
}
