package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Document is an uploaded file and its extracted text. A row is created at
// upload time with Processed false, then mutated exactly once by the
// extraction worker; deleting it cascades to its queries.
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title,omitempty"`
	Content     string    `json:"-"`
	WordCount   int       `json:"word_count"`
	Processed   bool      `json:"processed"`
	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateDocument inserts a new, not-yet-processed document row.
func (s *Store) CreateDocument(ctx context.Context, doc *Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, title, content, word_count, processed, content_hash, created_at, updated_at)
		VALUES (?, ?, ?, '', 0, 0, '', ?, ?)`,
		doc.ID, doc.Filename, doc.Title, doc.CreatedAt.UTC(), doc.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// SetDocumentContent records the extraction result: the one permitted
// mutation of a document row.
func (s *Store) SetDocumentContent(ctx context.Context, id, content string, wordCount int, contentHash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET content = ?, word_count = ?, processed = 1, content_hash = ?, updated_at = ?
		WHERE id = ?`,
		content, wordCount, contentHash, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update document content: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document content: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDocument fetches a document by ID, including its content.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, title, content, word_count, processed, content_hash, created_at, updated_at
		FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// GetDocumentByHash fetches a processed document with the given content hash.
func (s *Store) GetDocumentByHash(ctx context.Context, hash string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, title, content, word_count, processed, content_hash, created_at, updated_at
		FROM documents WHERE content_hash = ? AND processed = 1 LIMIT 1`, hash)
	return scanDocument(row)
}

// ListDocuments returns all documents, newest first, without their content.
func (s *Store) ListDocuments(ctx context.Context) ([]*Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, title, word_count, processed, content_hash, created_at, updated_at
		FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []*Document{}
	for rows.Next() {
		var d Document
		var processed int
		if err := rows.Scan(&d.ID, &d.Filename, &d.Title, &d.WordCount, &processed, &d.ContentHash, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.Processed = processed != 0
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document; its queries go with it via the FK
// cascade.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDocument(row *sql.Row) (*Document, error) {
	var d Document
	var processed int
	err := row.Scan(&d.ID, &d.Filename, &d.Title, &d.Content, &d.WordCount, &processed, &d.ContentHash, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	d.Processed = processed != 0
	return &d, nil
}
