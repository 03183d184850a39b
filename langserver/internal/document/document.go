package document

import (
	"sync"

	"github.com/kitagry/copilotls/langserver/internal/lsp"
)

type File struct {
	URI        lsp.DocumentURI
	LanguageID string
	Text       string
	Version    int
}

// Store keeps the documents the editor currently has open.
type Store struct {
	mu    sync.RWMutex
	files map[lsp.DocumentURI]*File
}

func NewStore() *Store {
	return &Store{files: make(map[lsp.DocumentURI]*File)}
}

func (s *Store) Get(uri lsp.DocumentURI) (File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[uri]
	if !ok {
		return File{}, false
	}
	return *f, true
}

func (s *Store) Open(uri lsp.DocumentURI, languageID, text string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[uri] = &File{
		URI:        uri,
		LanguageID: languageID,
		Text:       text,
		Version:    version,
	}
}

// Update replaces the text of uri. Changes older than the stored version are ignored.
func (s *Store) Update(uri lsp.DocumentURI, text string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[uri]
	if !ok {
		s.files[uri] = &File{URI: uri, Text: text, Version: version}
		return
	}
	if version != 0 && version < f.Version {
		return
	}
	f.Text = text
	f.Version = version
}

func (s *Store) Close(uri lsp.DocumentURI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, uri)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
