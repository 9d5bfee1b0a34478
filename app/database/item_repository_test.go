package database

import (
	"path/filepath"
	"testing"
	"time"
)

func setupTestRepo(t *testing.T) *SQLiteItemRepository {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewItemRepository(db)
}

func testItem(hash string) Item {
	return Item{
		SourceType:  "rss",
		Title:       "New benchmark paper",
		URL:         "https://example.com/post",
		Author:      "Jane Researcher",
		PublishedAt: "2025-11-09T10:00:00+00:00",
		IngestedAt:  "2025-11-10T12:00:00+00:00",
		Excerpt:     "An AI benchmark announcement",
		Content:     "Full article text",
		Score:       3.5,
		Tags:        []string{"Frontier research", "Infra & semis"},
		Metadata:    map[string]string{"feed": "https://example.com/feed.xml"},
		DedupeHash:  hash,
	}
}

func TestInsertItem_AndGetItem(t *testing.T) {
	repo := setupTestRepo(t)

	id, err := repo.InsertItem(testItem("hash-1"))
	if err != nil {
		t.Fatalf("Failed to insert item: %v", err)
	}
	if id == 0 {
		t.Fatal("Expected a non-zero id for a fresh insert")
	}

	item, err := repo.GetItem(id)
	if err != nil {
		t.Fatalf("Failed to get item: %v", err)
	}
	if item == nil {
		t.Fatal("Expected item to be found")
	}

	if item.Title != "New benchmark paper" {
		t.Errorf("Expected title to round-trip, got %q", item.Title)
	}
	if item.PublishedAt != "2025-11-09T10:00:00+00:00" {
		t.Errorf("Expected published_at to round-trip, got %q", item.PublishedAt)
	}
	if len(item.Tags) != 2 || item.Tags[0] != "Frontier research" {
		t.Errorf("Expected tags to round-trip, got %v", item.Tags)
	}
	if item.Metadata["feed"] != "https://example.com/feed.xml" {
		t.Errorf("Expected metadata to round-trip, got %v", item.Metadata)
	}
	if item.Score != 3.5 {
		t.Errorf("Expected score 3.5, got %v", item.Score)
	}
}

func TestInsertItem_DuplicateHashIsSilentlySkipped(t *testing.T) {
	repo := setupTestRepo(t)

	if _, err := repo.InsertItem(testItem("hash-1")); err != nil {
		t.Fatalf("Failed to insert item: %v", err)
	}

	duplicate := testItem("hash-1")
	duplicate.Title = "Same story, different fetch"

	id, err := repo.InsertItem(duplicate)
	if err != nil {
		t.Fatalf("Expected duplicate insert to not error: %v", err)
	}
	if id != 0 {
		t.Errorf("Expected id 0 for a duplicate, got %d", id)
	}

	count, err := repo.GetItemCount()
	if err != nil {
		t.Fatalf("Failed to count items: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly 1 stored item, got %d", count)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	item, err := repo.GetItem(12345)
	if err != nil {
		t.Fatalf("Expected no error for a missing item: %v", err)
	}
	if item != nil {
		t.Errorf("Expected nil for a missing item, got %+v", item)
	}
}

func TestListItems_Filters(t *testing.T) {
	repo := setupTestRepo(t)

	a := testItem("hash-a")
	a.SourceType = "x"
	a.Title = "GPU shipment update"
	a.Score = 1.0
	a.Tags = []string{"Infra & semis"}

	b := testItem("hash-b")
	b.SourceType = "rss"
	b.Title = "Datacenter policy brief"
	b.Score = 4.0
	b.PublishedAt = "2025-11-08T10:00:00+00:00"
	b.Tags = []string{"Policy & geopolitics"}

	for _, item := range []Item{a, b} {
		if _, err := repo.InsertItem(item); err != nil {
			t.Fatalf("Failed to insert item: %v", err)
		}
	}

	bySource, err := repo.ListItems(ItemFilter{SourceType: "x"})
	if err != nil {
		t.Fatalf("Failed to list by source: %v", err)
	}
	if len(bySource) != 1 || bySource[0].SourceType != "x" {
		t.Errorf("Expected one x item, got %v", bySource)
	}

	byScore, err := repo.ListItems(ItemFilter{MinScore: 2.0})
	if err != nil {
		t.Fatalf("Failed to list by score: %v", err)
	}
	if len(byScore) != 1 || byScore[0].Score != 4.0 {
		t.Errorf("Expected one high-score item, got %v", byScore)
	}

	byTag, err := repo.ListItems(ItemFilter{Tag: "Policy & geopolitics"})
	if err != nil {
		t.Fatalf("Failed to list by tag: %v", err)
	}
	if len(byTag) != 1 || byTag[0].Title != "Datacenter policy brief" {
		t.Errorf("Expected the policy item, got %v", byTag)
	}

	bySearch, err := repo.ListItems(ItemFilter{Search: "shipment"})
	if err != nil {
		t.Fatalf("Failed to list by search: %v", err)
	}
	if len(bySearch) != 1 || bySearch[0].Title != "GPU shipment update" {
		t.Errorf("Expected the shipment item, got %v", bySearch)
	}

	byDate, err := repo.ListItems(ItemFilter{StartDate: "2025-11-09T00:00:00+00:00"})
	if err != nil {
		t.Fatalf("Failed to list by date: %v", err)
	}
	if len(byDate) != 1 || byDate[0].DedupeHash != "hash-a" {
		t.Errorf("Expected only the newer item, got %v", byDate)
	}

	limited, err := repo.ListItems(ItemFilter{Limit: 1})
	if err != nil {
		t.Fatalf("Failed to list with limit: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected 1 item with limit, got %d", len(limited))
	}
}

func TestListItems_OrderingPutsUnknownDatesLast(t *testing.T) {
	repo := setupTestRepo(t)

	newest := testItem("hash-new")
	newest.PublishedAt = "2025-11-09T10:00:00+00:00"

	older := testItem("hash-old")
	older.PublishedAt = "2025-11-08T10:00:00+00:00"

	undated := testItem("hash-undated")
	undated.PublishedAt = ""
	undated.IngestedAt = "2025-11-10T13:00:00+00:00"

	for _, item := range []Item{older, undated, newest} {
		if _, err := repo.InsertItem(item); err != nil {
			t.Fatalf("Failed to insert item: %v", err)
		}
	}

	items, err := repo.ListItems(ItemFilter{})
	if err != nil {
		t.Fatalf("Failed to list items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}

	if items[0].DedupeHash != "hash-new" || items[1].DedupeHash != "hash-old" || items[2].DedupeHash != "hash-undated" {
		t.Errorf("Expected newest, older, undated; got %q, %q, %q",
			items[0].DedupeHash, items[1].DedupeHash, items[2].DedupeHash)
	}
}

func TestGetSourceStats(t *testing.T) {
	repo := setupTestRepo(t)

	a := testItem("hash-a")
	a.SourceType = "x"
	b := testItem("hash-b")
	b.SourceType = "x"
	c := testItem("hash-c")
	c.SourceType = "rss"

	for _, item := range []Item{a, b, c} {
		if _, err := repo.InsertItem(item); err != nil {
			t.Fatalf("Failed to insert item: %v", err)
		}
	}

	stats, err := repo.GetSourceStats()
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats["x"] != 2 || stats["rss"] != 1 {
		t.Errorf("Expected x:2 rss:1, got %v", stats)
	}
}

func TestGetRecentTopItems_OrdersByScore(t *testing.T) {
	repo := setupTestRepo(t)

	low := testItem("hash-low")
	low.Score = 1.0
	high := testItem("hash-high")
	high.Score = 5.0
	old := testItem("hash-stale")
	old.Score = 9.0
	old.IngestedAt = "2025-11-01T12:00:00+00:00"

	for _, item := range []Item{low, high, old} {
		if _, err := repo.InsertItem(item); err != nil {
			t.Fatalf("Failed to insert item: %v", err)
		}
	}

	items, err := repo.GetRecentTopItems("2025-11-10T00:00:00+00:00", 12)
	if err != nil {
		t.Fatalf("Failed to get top items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 recent items, got %d", len(items))
	}
	if items[0].DedupeHash != "hash-high" {
		t.Errorf("Expected highest score first, got %q", items[0].DedupeHash)
	}
}

func TestCleanupOldItems(t *testing.T) {
	repo := setupTestRepo(t)

	fresh := testItem("hash-fresh")
	stale := testItem("hash-stale")
	stale.IngestedAt = "2025-08-01T12:00:00+00:00"

	for _, item := range []Item{fresh, stale} {
		if _, err := repo.InsertItem(item); err != nil {
			t.Fatalf("Failed to insert item: %v", err)
		}
	}

	now := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)
	deleted, err := repo.CleanupOldItems(90, now)
	if err != nil {
		t.Fatalf("Failed to clean up: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted item, got %d", deleted)
	}

	count, err := repo.GetItemCount()
	if err != nil {
		t.Fatalf("Failed to count items: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 remaining item, got %d", count)
	}

	// Tag rows of the deleted item must be gone too.
	var tagCount int
	if err := repo.db.QueryRow("SELECT COUNT(*) FROM item_tags").Scan(&tagCount); err != nil {
		t.Fatalf("Failed to count tag rows: %v", err)
	}
	if tagCount != 2 {
		t.Errorf("Expected only the surviving item's 2 tag rows, got %d", tagCount)
	}
}
