// Package session tracks the set of open documents and which one is
// active, the way an editor workspace does.
package session

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"scriptmap/internal/logging"
)

// Session is a registry of open documents keyed by ID.
type Session struct {
	mu     sync.RWMutex
	docs   map[string]*Document
	active string
	logger *slog.Logger
}

// New creates an empty session.
func New() *Session {
	return &Session{
		docs:   make(map[string]*Document),
		logger: logging.Default("session"),
	}
}

// Open registers a new document with the given name and content and
// makes it active. Returns the document.
func (s *Session) Open(name, text string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := newDocument(uuid.NewString(), name, text)
	s.docs[doc.ID()] = doc
	s.active = doc.ID()

	s.logger.Debug("opened document", "id", doc.ID(), "name", name, "lines", doc.LineCount())
	return doc
}

// Get returns the document with the given ID.
func (s *Session) Get(id string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok
}

// ByName returns the first document with the given display name.
func (s *Session) ByName(name string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.docs {
		if doc.Name() == name {
			return doc, true
		}
	}
	return nil, false
}

// Close removes a document from the session. When the active document
// is closed, the session is left without an active document.
func (s *Session) Close(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return false
	}
	delete(s.docs, id)
	if s.active == id {
		s.active = ""
	}
	s.logger.Debug("closed document", "id", id)
	return true
}

// List returns all open documents sorted by name.
func (s *Session) List() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	return out
}

// Active returns the active document, if any.
func (s *Session) Active() (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[s.active]
	return doc, ok
}

// SetActive marks the document with the given ID active.
func (s *Session) SetActive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return false
	}
	s.active = id
	return true
}

// Len returns the number of open documents.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
