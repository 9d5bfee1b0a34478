package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var itemColumns = []string{
	"id", "source_type", "title", "url",
	"COALESCE(author, '')", "COALESCE(published_at, '')", "ingested_at",
	"COALESCE(excerpt, '')", "COALESCE(content, '')",
	"COALESCE(summary, '')", "COALESCE(analysis, '')",
	"score", "tags", "metadata_json", "dedupe_hash",
}

// SQLiteItemRepository implements ItemRepository on the SQLite store.
type SQLiteItemRepository struct {
	db *DB
}

var _ ItemRepository = (*SQLiteItemRepository)(nil)

func NewItemRepository(db *DB) *SQLiteItemRepository {
	return &SQLiteItemRepository{db: db}
}

// InsertItem writes the item row and its tag rows in one transaction. The
// tags column and the item_tags side table are two projections of the same
// set and must never diverge. A duplicate dedupe_hash rolls back and
// returns (0, nil).
func (r *SQLiteItemRepository) InsertItem(item Item) (int64, error) {
	metadata, err := json.Marshal(orEmptyMap(item.Metadata))
	if err != nil {
		return 0, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	res, err := tx.Exec(`
		INSERT INTO items (
			source_type, title, url, author, published_at, ingested_at,
			excerpt, content, summary, analysis, score, tags,
			metadata_json, dedupe_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.SourceType, item.Title, item.URL, nullString(item.Author),
		nullString(item.PublishedAt), item.IngestedAt,
		nullString(item.Excerpt), nullString(item.Content),
		nullString(item.Summary), nullString(item.Analysis),
		item.Score, strings.Join(item.Tags, ","), string(metadata),
		item.DedupeHash)
	if err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}

	for _, tag := range item.Tags {
		if _, err := tx.Exec("INSERT INTO item_tags (item_id, tag) VALUES (?, ?)", id, tag); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to insert item tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit item: %w", err)
	}

	return id, nil
}

func (r *SQLiteItemRepository) GetItem(id int64) (*Item, error) {
	query, args, err := sq.Select(itemColumns...).From("items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	item, err := scanItem(r.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

// ListItems applies the filter and returns items ordered by published date
// descending with unknown dates last, ties broken by ingestion time
// descending.
func (r *SQLiteItemRepository) ListItems(filter ItemFilter) ([]Item, error) {
	builder := sq.Select(itemColumns...).From("items")

	if filter.SourceType != "" {
		builder = builder.Where(sq.Eq{"source_type": filter.SourceType})
	}
	if filter.MinScore > 0 {
		builder = builder.Where(sq.GtOrEq{"score": filter.MinScore})
	}
	if filter.StartDate != "" {
		builder = builder.Where(sq.GtOrEq{"published_at": filter.StartDate})
	}
	if filter.EndDate != "" {
		builder = builder.Where(sq.LtOrEq{"published_at": filter.EndDate})
	}
	if filter.Tag != "" {
		builder = builder.Where("id IN (SELECT item_id FROM item_tags WHERE tag = ?)", filter.Tag)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.Like{"title": like},
			sq.Like{"excerpt": like},
			sq.Like{"content": like},
		})
	}

	builder = builder.OrderBy("published_at IS NULL", "published_at DESC", "ingested_at DESC")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	return r.queryItems(query, args...)
}

func (r *SQLiteItemRepository) GetItemCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get item count: %w", err)
	}
	return count, nil
}

func (r *SQLiteItemRepository) GetSourceStats() (map[string]int, error) {
	rows, err := r.db.Query("SELECT source_type, COUNT(*) FROM items GROUP BY source_type")
	if err != nil {
		return nil, fmt.Errorf("failed to get source stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var sourceType string
		var count int
		if err := rows.Scan(&sourceType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats[sourceType] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats rows: %w", err)
	}

	return stats, nil
}

func (r *SQLiteItemRepository) GetRecentTopItems(since string, limit int) ([]Item, error) {
	query, args, err := sq.Select(itemColumns...).From("items").
		Where(sq.GtOrEq{"ingested_at": since}).
		OrderBy("score DESC", "published_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	return r.queryItems(query, args...)
}

func (r *SQLiteItemRepository) GetItemsIngestedSince(since string) ([]Item, error) {
	query, args, err := sq.Select(itemColumns...).From("items").
		Where(sq.GtOrEq{"ingested_at": since}).
		OrderBy("published_at IS NULL", "published_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	return r.queryItems(query, args...)
}

// CleanupOldItems removes items ingested before now - retentionDays,
// together with their tag rows.
func (r *SQLiteItemRepository) CleanupOldItems(retentionDays int, now time.Time) (int64, error) {
	cutoff := now.UTC().AddDate(0, 0, -retentionDays).Format("2006-01-02T15:04:05-07:00")

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM item_tags WHERE item_id IN (SELECT id FROM items WHERE ingested_at < ?)", cutoff); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to delete old item tags: %w", err)
	}

	res, err := tx.Exec("DELETE FROM items WHERE ingested_at < ?", cutoff)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to delete old items: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit cleanup: %w", err)
	}

	return deleted, nil
}

func (r *SQLiteItemRepository) queryItems(query string, args ...interface{}) ([]Item, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var tags, metadata string

	err := row.Scan(
		&item.ID, &item.SourceType, &item.Title, &item.URL,
		&item.Author, &item.PublishedAt, &item.IngestedAt,
		&item.Excerpt, &item.Content, &item.Summary, &item.Analysis,
		&item.Score, &tags, &metadata, &item.DedupeHash,
	)
	if err != nil {
		return nil, err
	}

	if tags != "" {
		item.Tags = strings.Split(tags, ",")
	}
	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &item.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &item, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
