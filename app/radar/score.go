package radar

import (
	"math"
	"strings"
	"time"

	"github.com/jasonlinpng/ai-radar/app/sources"
)

// importantKeywords each add 1.0 to the score when present in the title or
// excerpt. Keywords are independent; an item can collect several bonuses.
var importantKeywords = []string{
	"launch",
	"paper",
	"benchmark",
	"policy",
	"export control",
	"datacenter",
}

// sourceWeights is the base score per source type. Unknown types get a
// neutral 1.0.
var sourceWeights = map[string]float64{
	sources.SourceX:       1.0,
	sources.SourceYouTube: 1.2,
	sources.SourceWeb:     1.1,
	sources.SourceRSS:     1.0,
}

// RuleScore ranks a candidate: source weight, plus importance-keyword
// bonuses, plus a recency bonus decaying linearly from 2.0 at age zero to
// nothing at 48 hours. An unparseable timestamp just skips the recency
// bonus. Rounded to 2 decimal places.
func RuleScore(c sources.Candidate, now time.Time) float64 {
	score, ok := sourceWeights[c.SourceType]
	if !ok {
		score = 1.0
	}

	title := strings.ToLower(c.Title)
	excerpt := strings.ToLower(c.Excerpt)
	for _, keyword := range importantKeywords {
		if strings.Contains(title, keyword) || strings.Contains(excerpt, keyword) {
			score += 1.0
		}
	}

	if published, ok := ParseDateTime(c.PublishedAt); ok {
		ageHours := now.UTC().Sub(published).Hours()
		score += math.Max(0, 2.0-ageHours/24)
	}

	return roundScore(score)
}

func roundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
