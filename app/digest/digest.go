package digest

import (
	"cmp"
	"fmt"
	"html"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jasonlinpng/ai-radar/app/database"
	"github.com/jasonlinpng/ai-radar/app/radar"
)

// DefaultItemLimit caps how many items one digest email carries.
const DefaultItemLimit = 12

var printer = message.NewPrinter(language.English)

// RenderText renders the plain-text alternative of the digest email.
func RenderText(items []database.Item, baseURL string) string {
	var b strings.Builder
	b.WriteString("AI Signal Radar - Morning Digest\n")
	b.WriteString(printer.Sprintf("%d items in the last 24 hours\n", len(items)))

	for _, item := range items {
		fmt.Fprintf(&b, "- %s (%s)\n", item.Title, item.SourceType)
		if body := cmp.Or(item.Summary, item.Excerpt); body != "" {
			fmt.Fprintf(&b, "  %s\n", body)
		}
		fmt.Fprintf(&b, "  %s/items/%d\n", baseURL, item.ID)
	}

	return b.String()
}

// RenderHTML renders the HTML alternative of the digest email.
func RenderHTML(items []database.Item, baseURL string) string {
	var b strings.Builder
	b.WriteString("<h2>AI Signal Radar - Morning Digest</h2>\n")

	for _, item := range items {
		b.WriteString("<div style='margin-bottom:16px'>")
		fmt.Fprintf(&b, "<strong>%s</strong><br>", html.EscapeString(item.Title))
		fmt.Fprintf(&b, "<em>%s | %s</em><br>", html.EscapeString(item.SourceType), html.EscapeString(item.Author))
		if body := cmp.Or(item.Summary, item.Excerpt); body != "" {
			fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(body))
		}
		if item.Analysis != "" {
			fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(item.Analysis))
		}
		fmt.Fprintf(&b, "<a href='%s/items/%d'>View on dashboard</a>", baseURL, item.ID)
		b.WriteString("</div>\n")
	}

	return b.String()
}

// RenderReport renders a markdown report of the given items grouped by tag,
// in tag-table order. Untagged sections are omitted.
func RenderReport(items []database.Item, now time.Time) string {
	var b strings.Builder
	b.WriteString("# AI Signal Radar Report\n\n")
	fmt.Fprintf(&b, "Generated %s\n\n", radar.FormatTimestamp(now))
	b.WriteString(printer.Sprintf("%d items in the reporting window.\n\n", len(items)))

	for _, rule := range radar.TagRules {
		var tagged []database.Item
		for _, item := range items {
			if slices.Contains(item.Tags, rule.Tag) {
				tagged = append(tagged, item)
			}
		}
		if len(tagged) == 0 {
			continue
		}

		fmt.Fprintf(&b, "## %s\n\n", rule.Tag)
		for _, item := range tagged {
			fmt.Fprintf(&b, "### %s\n", item.Title)
			fmt.Fprintf(&b, "- Source: %s | Author: %s | Date: %s\n", item.SourceType, item.Author, item.PublishedAt)
			if body := cmp.Or(item.Summary, item.Excerpt); body != "" {
				fmt.Fprintf(&b, "- Summary: %s\n", body)
			}
			fmt.Fprintf(&b, "- Link: %s\n\n", item.URL)
		}
	}

	return b.String()
}
