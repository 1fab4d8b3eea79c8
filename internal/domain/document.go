package domain

import "time"

// Document is the persisted record of an editor session.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	NextBlockID int       `json:"nextBlockId"`
	CurrentStep int       `json:"currentStep"`
	Steps       int       `json:"steps"`
	EditMode    bool      `json:"editMode"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Journal is a document's persisted history.
type Journal struct {
	Document  Document   `json:"document"`
	Snapshots []Snapshot `json:"snapshots"`
}

type JournalStore interface {
	CreateDocument(d *Document) error
	GetDocument(id string) (*Document, error)
	ListDocuments() ([]Document, error)
	DeleteDocument(id string) error
	// SaveJournal replaces the stored history of a document.
	SaveJournal(j *Journal) error
	LoadJournal(id string) (*Journal, error)
	// PruneJournals trims idle documents; documents named in skip are left
	// untouched.
	PruneJournals(maxSteps int, olderThan time.Time, skip ...string) (int, error)
}
