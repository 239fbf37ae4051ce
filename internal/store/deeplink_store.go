package store

import (
	"path/filepath"
	"strings"
	"sync"

	"wconnect/internal/domain"
)

const deepLinkFilename = "deeplink.json"

// DeepLinkFileStore remembers the mobile wallet link picked last.
type DeepLinkFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewDeepLinkFileStore returns a DeepLinkFileStore rooted at dir.
func NewDeepLinkFileStore(dir string) *DeepLinkFileStore {
	return &DeepLinkFileStore{dir: dir}
}

// SaveDeepLink stores info with any query string removed from Href.
func (s *DeepLinkFileStore) SaveDeepLink(info domain.MobileLinkInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(filepath.Join(s.dir, deepLinkFilename), StripLinkQuery(info), 0o600)
}

// LoadDeepLink returns the stored choice, if any.
func (s *DeepLinkFileStore) LoadDeepLink() (domain.MobileLinkInfo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var info domain.MobileLinkInfo
	if err := readJSON(filepath.Join(s.dir, deepLinkFilename), &info); err != nil {
		return domain.MobileLinkInfo{}, false, err
	}
	return info, info.Href != "", nil
}

// RemoveDeepLink forgets the stored choice.
func (s *DeepLinkFileStore) RemoveDeepLink() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeFile(filepath.Join(s.dir, deepLinkFilename))
}

// StripLinkQuery drops everything from the first '?' in info.Href.
func StripLinkQuery(info domain.MobileLinkInfo) domain.MobileLinkInfo {
	if i := strings.IndexByte(info.Href, '?'); i >= 0 {
		info.Href = info.Href[:i]
	}
	return info
}

// Compile-time assertion that DeepLinkFileStore implements domain.DeepLinkStore.
var _ domain.DeepLinkStore = (*DeepLinkFileStore)(nil)
