package radar

import (
	"testing"
)

func TestNormalizeText_JoinsAndCollapsesWhitespace(t *testing.T) {
	result := NormalizeText("Hello   world", "", "  second\npart  ")

	if result != "Hello world second part" {
		t.Errorf("Expected collapsed text, got %q", result)
	}
}

func TestNormalizeText_AllEmpty(t *testing.T) {
	if result := NormalizeText("", "", ""); result != "" {
		t.Errorf("Expected empty string, got %q", result)
	}
}

func TestRuleFilter_KeepsRelevantText(t *testing.T) {
	result := RuleFilter("OpenAI publishes a new benchmark paper")

	if !result.Keep {
		t.Error("Expected relevant text to be kept")
	}
	if len(result.Reasons) == 0 {
		t.Error("Expected matched keywords in reasons")
	}
}

func TestRuleFilter_DropsIrrelevantText(t *testing.T) {
	result := RuleFilter("Best sourdough recipes for the weekend")

	if result.Keep {
		t.Errorf("Expected irrelevant text to be dropped, matched %v", result.Reasons)
	}
}

func TestRuleFilter_SubstringMatchingIsAccepted(t *testing.T) {
	// "ai" matches inside unrelated words on purpose.
	result := RuleFilter("The daily commute was uneventful")

	if !result.Keep {
		t.Error("Expected substring match on 'ai' inside 'daily' to keep the item")
	}
}

func TestRuleFilter_TagsFollowRuleOrder(t *testing.T) {
	result := RuleFilter("New GPU datacenter policy announced alongside a research paper")

	// "datacenter" also matches the "data" keyword of the data-strategy rule.
	expected := []string{
		"Frontier research",
		"Infra & semis",
		"Policy & geopolitics",
		"Energy & Datacenter (Power/Cooling/Grid/Nuclear/Real Estate)",
		"Data Strategy & Supply",
	}

	if len(result.Tags) != len(expected) {
		t.Fatalf("Expected %d tags, got %d: %v", len(expected), len(result.Tags), result.Tags)
	}
	for i, tag := range expected {
		if result.Tags[i] != tag {
			t.Errorf("Expected tag %d to be %q, got %q", i, tag, result.Tags[i])
		}
	}
}

func TestRuleFilter_EachTagAssignedOnce(t *testing.T) {
	result := RuleFilter("gpu chip nvidia datacenter semiconductor")

	count := 0
	for _, tag := range result.Tags {
		if tag == "Infra & semis" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected tag assigned once, got %d times", count)
	}
}

func TestRuleFilter_KeepWithNoTags(t *testing.T) {
	// "alignment" passes the keep gate and also triggers the safety tag, so
	// use a keyword with no tag rule.
	result := RuleFilter("anthropic announces something")

	if !result.Keep {
		t.Fatal("Expected text to be kept")
	}
	if len(result.Tags) != 0 {
		t.Errorf("Expected no tags, got %v", result.Tags)
	}
}
