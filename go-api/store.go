package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Account is a persisted forum user. The hash is serialized under the `pass`
// key the previous server wrote, so an existing data.json loads unchanged.
type Account struct {
	Username     string `json:"username"`
	PasswordHash string `json:"pass"`
}

// Comment is one forum comment, in both its persisted and public JSON shape.
// Date is RFC 3339 UTC, set at creation and refreshed on every edit.
type Comment struct {
	ID     string `json:"id"`
	User   string `json:"user"`
	Text   string `json:"text"`
	Date   string `json:"date"`
	Edited bool   `json:"edited,omitempty"`
}

// Document is the entire database. Every operation loads it, mutates one
// collection in memory and writes the whole thing back.
type Document struct {
	Users    []Account `json:"users"`
	Comments []Comment `json:"comments"`
}

var (
	ErrDuplicateUser      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrCorruptStore       = errors.New("corrupt store")
)

// Store is the only component allowed to touch persistent storage.
type Store interface {
	// Load returns the current document, initializing an empty one when
	// nothing has been persisted yet. Malformed persisted content fails
	// with ErrCorruptStore.
	Load() (*Document, error)
	// Save overwrites the entire persisted document. A crash mid-write can
	// leave the store corrupt; there is no recovery path.
	Save(doc *Document) error
}

// store is set once at startup (or swapped by tests). storeMu serializes
// every load-mutate-save so overlapping requests cannot interleave writes;
// read-only operations do not take it.
var (
	store   Store
	storeMu sync.Mutex
)

func emptyDocument() *Document {
	return &Document{Users: []Account{}, Comments: []Comment{}}
}

// fileStore keeps the document in one pretty-printed JSON file.
type fileStore struct {
	path string
}

func newFileStore(path string) *fileStore {
	return &fileStore{path: path}
}

// ensure creates the backing file with an empty document when it is missing.
func (s *fileStore) ensure() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	b, _ := json.MarshalIndent(emptyDocument(), "", "  ")
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("init %s: %w", s.path, err)
	}
	return nil
}

func (s *fileStore) Load() (*Document, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	doc := emptyDocument()
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, s.path, err)
	}
	return doc, nil
}

func (s *fileStore) Save(doc *Document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// memStore is the in-memory backend tests inject. It round-trips through
// JSON so callers get their own copy of the document, same as the file
// backend.
type memStore struct {
	mu  sync.Mutex
	raw []byte
}

func newMemStore() *memStore {
	return &memStore{}
}

func (s *memStore) Load() (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := emptyDocument()
	if s.raw == nil {
		return doc, nil
	}
	if err := json.Unmarshal(s.raw, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	return doc, nil
}

func (s *memStore) Save(doc *Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.raw = b
	s.mu.Unlock()
	return nil
}
