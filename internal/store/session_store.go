package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"wconnect/internal/domain"
)

const sessionsFilename = "sessions.json"

// DefaultStorageKey is the slot a connector persists its session under.
const DefaultStorageKey = "walletconnect"

// sessionRecord is one slot of sessions.json. Exactly one field is set.
type sessionRecord struct {
	Session *domain.Session `json:"session,omitempty"`
	Sealed  json.RawMessage `json:"sealed,omitempty"`
}

// SessionFileStore persists connector sessions to disk, one record per
// storage key. With a passphrase each record is sealed before it is written.
type SessionFileStore struct {
	dir        string
	passphrase string
	params     scryptParams
	mu         sync.Mutex
}

// NewSessionFileStore returns a SessionFileStore rooted at dir. An empty
// passphrase stores records in the clear.
func NewSessionFileStore(dir, passphrase string) *SessionFileStore {
	return &SessionFileStore{dir: dir, passphrase: passphrase, params: defaultScryptParams()}
}

// SaveSession writes session under key.
func (s *SessionFileStore) SaveSession(key string, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, sessionsFilename)
	records := map[string]sessionRecord{}
	if err := readJSON(path, &records); err != nil {
		return err
	}

	rec := sessionRecord{Session: &session}
	if s.passphrase != "" {
		raw, err := json.Marshal(session)
		if err != nil {
			return err
		}
		sealedRaw, err := seal(s.passphrase, key, raw, s.params)
		if err != nil {
			return fmt.Errorf("store: seal session: %w", err)
		}
		rec = sessionRecord{Sealed: sealedRaw}
	}
	records[key] = rec
	return writeJSON(path, records, 0o600)
}

// LoadSession retrieves the session stored under key. Records without a
// bridge are not sessions and report ok == false.
func (s *SessionFileStore) LoadSession(key string) (domain.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, sessionsFilename)
	records := map[string]sessionRecord{}
	if err := readJSON(path, &records); err != nil {
		return domain.Session{}, false, err
	}
	rec, ok := records[key]
	if !ok {
		return domain.Session{}, false, nil
	}

	var session domain.Session
	switch {
	case len(rec.Sealed) > 0:
		if s.passphrase == "" {
			return domain.Session{}, false, ErrWrongPassphrase
		}
		raw, err := open(s.passphrase, key, rec.Sealed)
		if err != nil {
			return domain.Session{}, false, err
		}
		if err := json.Unmarshal(raw, &session); err != nil {
			return domain.Session{}, false, fmt.Errorf("store: decode session: %w", err)
		}
	case rec.Session != nil:
		session = *rec.Session
	default:
		return domain.Session{}, false, nil
	}

	if session.Bridge == "" {
		return domain.Session{}, false, nil
	}
	return session, true, nil
}

// RemoveSession erases the record under key. Removing a missing record is
// not an error.
func (s *SessionFileStore) RemoveSession(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, sessionsFilename)
	records := map[string]sessionRecord{}
	if err := readJSON(path, &records); err != nil {
		return err
	}
	if _, ok := records[key]; !ok {
		return nil
	}
	delete(records, key)
	if len(records) == 0 {
		return removeFile(path)
	}
	return writeJSON(path, records, 0o600)
}

// Compile-time assertion that SessionFileStore implements domain.SessionStore.
var _ domain.SessionStore = (*SessionFileStore)(nil)
