package radar

import (
	"strings"
	"testing"
	"time"
)

func TestParseDateTime_RFC3339(t *testing.T) {
	parsed, ok := ParseDateTime("2025-11-09T10:00:00Z")
	if !ok {
		t.Fatal("Expected RFC3339 timestamp to parse")
	}

	expected := time.Date(2025, 11, 9, 10, 0, 0, 0, time.UTC)
	if !parsed.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, parsed)
	}
}

func TestParseDateTime_OffsetNormalizedToUTC(t *testing.T) {
	parsed, ok := ParseDateTime("2025-11-09T18:00:00+08:00")
	if !ok {
		t.Fatal("Expected offset timestamp to parse")
	}

	expected := time.Date(2025, 11, 9, 10, 0, 0, 0, time.UTC)
	if !parsed.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, parsed)
	}
	if parsed.Location() != time.UTC {
		t.Errorf("Expected UTC location, got %v", parsed.Location())
	}
}

func TestParseDateTime_NaiveAssumedUTC(t *testing.T) {
	parsed, ok := ParseDateTime("2025-11-09 10:00:00")
	if !ok {
		t.Fatal("Expected naive timestamp to parse")
	}

	expected := time.Date(2025, 11, 9, 10, 0, 0, 0, time.UTC)
	if !parsed.Equal(expected) {
		t.Errorf("Expected naive timestamp assumed UTC (%v), got %v", expected, parsed)
	}
}

func TestParseDateTime_RFC822MailboxDate(t *testing.T) {
	parsed, ok := ParseDateTime("Sun, 09 Nov 2025 10:00:00 GMT")
	if !ok {
		t.Fatal("Expected RFC-822 date to parse")
	}

	expected := time.Date(2025, 11, 9, 10, 0, 0, 0, time.UTC)
	if !parsed.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, parsed)
	}
}

func TestParseDateTime_Invalid(t *testing.T) {
	for _, value := range []string{"", "   ", "not a date"} {
		if _, ok := ParseDateTime(value); ok {
			t.Errorf("Expected %q to fail parsing", value)
		}
	}
}

func TestTimePolicy_NormalizePublishedAt_Fresh(t *testing.T) {
	policy := TimePolicy{
		MinDate:    time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		MaxAgeDays: 7,
	}
	now := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)

	normalized, ok := policy.NormalizePublishedAt("2025-11-09T10:00:00Z", now)
	if !ok {
		t.Fatal("Expected fresh timestamp to be kept")
	}
	if normalized != "2025-11-09T10:00:00+00:00" {
		t.Errorf("Expected canonical form with explicit offset, got %q", normalized)
	}
}

func TestTimePolicy_NormalizePublishedAt_BeforeFloorDate(t *testing.T) {
	policy := TimePolicy{
		MinDate:    time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		MaxAgeDays: 30,
	}
	now := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)

	if _, ok := policy.NormalizePublishedAt("2025-10-30T10:00:00Z", now); ok {
		t.Error("Expected timestamp before the floor date to be rejected")
	}
}

func TestTimePolicy_NormalizePublishedAt_OlderThanWindow(t *testing.T) {
	policy := TimePolicy{
		MinDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		MaxAgeDays: 7,
	}
	now := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)

	if _, ok := policy.NormalizePublishedAt("2025-11-01T10:00:00Z", now); ok {
		t.Error("Expected timestamp outside the rolling window to be rejected")
	}
}

func TestTimePolicy_NormalizePublishedAt_MissingOrUnparseable(t *testing.T) {
	policy := TimePolicy{
		MinDate:    time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		MaxAgeDays: 7,
	}
	now := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)

	for _, value := range []string{"", "yesterday-ish"} {
		if _, ok := policy.NormalizePublishedAt(value, now); ok {
			t.Errorf("Expected %q to be rejected", value)
		}
	}
}

func TestFormatTimestamp_RoundTrips(t *testing.T) {
	now := time.Date(2025, 11, 10, 8, 30, 15, 0, time.UTC)
	formatted := FormatTimestamp(now)

	if !strings.HasSuffix(formatted, "+00:00") {
		t.Errorf("Expected explicit +00:00 offset, got %q", formatted)
	}

	parsed, err := time.Parse(time.RFC3339, formatted)
	if err != nil {
		t.Fatalf("Expected canonical timestamp to be RFC3339-parseable: %v", err)
	}
	if !parsed.Equal(now) {
		t.Errorf("Expected round-trip to preserve instant, got %v", parsed)
	}
}
