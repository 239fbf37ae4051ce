package store

import (
	"encoding/json"
	"sync"

	"wconnect/internal/domain"
)

// MemorySessionStore keeps sessions in process memory. Records are stored
// as JSON so callers never share slices with the store.
type MemorySessionStore struct {
	mu      sync.Mutex
	records map[string][]byte
}

// NewMemorySessionStore returns an empty MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{records: make(map[string][]byte)}
}

func (m *MemorySessionStore) SaveSession(key string, session domain.Session) error {
	b, err := json.Marshal(session)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.records[key] = b
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) LoadSession(key string) (domain.Session, bool, error) {
	m.mu.Lock()
	b, ok := m.records[key]
	m.mu.Unlock()
	if !ok {
		return domain.Session{}, false, nil
	}
	var session domain.Session
	if err := json.Unmarshal(b, &session); err != nil {
		return domain.Session{}, false, err
	}
	return session, session.Bridge != "", nil
}

func (m *MemorySessionStore) RemoveSession(key string) error {
	m.mu.Lock()
	delete(m.records, key)
	m.mu.Unlock()
	return nil
}

// MemoryDeepLinkStore keeps the deep-link choice in process memory.
type MemoryDeepLinkStore struct {
	mu   sync.Mutex
	info *domain.MobileLinkInfo
}

func NewMemoryDeepLinkStore() *MemoryDeepLinkStore {
	return &MemoryDeepLinkStore{}
}

func (m *MemoryDeepLinkStore) SaveDeepLink(info domain.MobileLinkInfo) error {
	info = StripLinkQuery(info)
	m.mu.Lock()
	m.info = &info
	m.mu.Unlock()
	return nil
}

func (m *MemoryDeepLinkStore) LoadDeepLink() (domain.MobileLinkInfo, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.info == nil {
		return domain.MobileLinkInfo{}, false, nil
	}
	return *m.info, true, nil
}

func (m *MemoryDeepLinkStore) RemoveDeepLink() error {
	m.mu.Lock()
	m.info = nil
	m.mu.Unlock()
	return nil
}

var (
	_ domain.SessionStore  = (*MemorySessionStore)(nil)
	_ domain.DeepLinkStore = (*MemoryDeepLinkStore)(nil)
)
