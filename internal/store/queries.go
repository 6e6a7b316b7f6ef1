package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Query is one answered question against a document. Immutable after
// creation.
type Query struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Confidence float64   `json:"confidence"`
	Sources    []string  `json:"sources"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateQuery persists an answered question. The document must exist; the
// FK rejects orphaned queries.
func (s *Store) CreateQuery(ctx context.Context, q *Query) error {
	if q.Confidence < 0 || q.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range [0,1]", q.Confidence)
	}
	sources := q.Sources
	if sources == nil {
		sources = []string{}
	}
	encoded, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO queries (id, document_id, question, answer, confidence, sources, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.DocumentID, q.Question, q.Answer, q.Confidence, string(encoded), q.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert query: %w", err)
	}
	return nil
}

// ListQueries returns a document's query history, oldest first.
func (s *Store) ListQueries(ctx context.Context, documentID string) ([]*Query, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, question, answer, confidence, sources, created_at
		FROM queries WHERE document_id = ? ORDER BY created_at`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer rows.Close()

	queries := []*Query{}
	for rows.Next() {
		var q Query
		var sources string
		if err := rows.Scan(&q.ID, &q.DocumentID, &q.Question, &q.Answer, &q.Confidence, &sources, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan query: %w", err)
		}
		if err := json.Unmarshal([]byte(sources), &q.Sources); err != nil {
			return nil, fmt.Errorf("decode sources: %w", err)
		}
		queries = append(queries, &q)
	}
	return queries, rows.Err()
}

// CountQueries returns how many queries exist for a document.
func (s *Store) CountQueries(ctx context.Context, documentID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM queries WHERE document_id = ?", documentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count queries: %w", err)
	}
	return n, nil
}
