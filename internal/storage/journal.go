package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pagebuilder/internal/domain"
)

// JournalStore implements domain.JournalStore using SQLite.
type JournalStore struct {
	db *DB
}

func NewJournalStore(db *DB) *JournalStore {
	return &JournalStore{db: db}
}

const documentColumns = `d.id, d.name, d.next_block_id, d.current_step, d.edit_mode, d.created_at, d.updated_at,
	(SELECT COUNT(*) FROM snapshots s WHERE s.document_id = d.id)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	d := &domain.Document{}
	if err := row.Scan(&d.ID, &d.Name, &d.NextBlockID, &d.CurrentStep, &d.EditMode, &d.CreatedAt, &d.UpdatedAt, &d.Steps); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *JournalStore) CreateDocument(d *domain.Document) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	_, err := s.db.Conn().Exec(
		`INSERT INTO documents (id, name, next_block_id, current_step, edit_mode, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.NextBlockID, d.CurrentStep, d.EditMode, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *JournalStore) GetDocument(id string) (*domain.Document, error) {
	d, err := scanDocument(s.db.Conn().QueryRow(
		`SELECT `+documentColumns+` FROM documents d WHERE d.id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get document %s: %w", id, domain.ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func (s *JournalStore) ListDocuments() ([]domain.Document, error) {
	rows, err := s.db.Conn().Query(`SELECT ` + documentColumns + ` FROM documents d ORDER BY d.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

func (s *JournalStore) DeleteDocument(id string) error {
	tx, err := s.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM snapshots WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return tx.Commit()
}

// SaveJournal atomically replaces a document's snapshots and cursor.
func (s *JournalStore) SaveJournal(j *domain.Journal) error {
	tx, err := s.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	d := &j.Document
	d.UpdatedAt = time.Now()
	d.Steps = len(j.Snapshots)
	res, err := tx.Exec(
		`UPDATE documents SET name = ?, next_block_id = ?, current_step = ?, edit_mode = ?, updated_at = ? WHERE id = ?`,
		d.Name, d.NextBlockID, d.CurrentStep, d.EditMode, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("save journal %s: %w", d.ID, domain.ErrSessionNotFound)
	}

	if _, err := tx.Exec(`DELETE FROM snapshots WHERE document_id = ?`, d.ID); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	for step, snap := range j.Snapshots {
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("encode snapshot %d: %w", step, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO snapshots (document_id, step, snapshot_json) VALUES (?, ?, ?)`,
			d.ID, step, string(data),
		); err != nil {
			return fmt.Errorf("insert snapshot %d: %w", step, err)
		}
	}

	return tx.Commit()
}

// LoadJournal returns a document with its snapshots ordered by step.
func (s *JournalStore) LoadJournal(id string) (*domain.Journal, error) {
	d, err := s.GetDocument(id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Conn().Query(
		`SELECT snapshot_json FROM snapshots WHERE document_id = ? ORDER BY step ASC`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	defer rows.Close()

	j := &domain.Journal{Document: *d}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		var snap domain.Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			return nil, fmt.Errorf("document %s: %w", id, err)
		}
		j.Snapshots = append(j.Snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return j, nil
}

// PruneJournals trims documents not touched since olderThan down to their
// newest maxSteps snapshots. Snapshots at or after the cursor are never
// dropped, so the present state of a document survives pruning. Documents
// listed in skip are not touched.
func (s *JournalStore) PruneJournals(maxSteps int, olderThan time.Time, skip ...string) (int, error) {
	if maxSteps < 1 {
		maxSteps = 1
	}
	docs, err := s.ListDocuments()
	if err != nil {
		return 0, err
	}

	skipped := make(map[string]bool, len(skip))
	for _, id := range skip {
		skipped[id] = true
	}

	pruned := 0
	for _, d := range docs {
		if skipped[d.ID] || d.Steps <= maxSteps || d.UpdatedAt.After(olderThan) {
			continue
		}
		j, err := s.LoadJournal(d.ID)
		if err != nil {
			return pruned, err
		}
		drop := len(j.Snapshots) - maxSteps
		if drop > j.Document.CurrentStep {
			drop = j.Document.CurrentStep
		}
		if drop <= 0 {
			continue
		}
		j.Snapshots = j.Snapshots[drop:]
		j.Document.CurrentStep -= drop
		if err := s.SaveJournal(j); err != nil {
			return pruned, err
		}
		pruned += drop
	}
	return pruned, nil
}
