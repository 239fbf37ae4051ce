package interfaces

import domaintypes "wconnect/internal/domain/types"

// SessionStore persists one session record per storage key.
type SessionStore interface {
	SaveSession(key string, session domaintypes.Session) error
	// LoadSession reports ok == false when nothing usable is stored under key.
	LoadSession(key string) (domaintypes.Session, bool, error)
	RemoveSession(key string) error
}

// DeepLinkStore remembers the wallet link a mobile user picked last.
type DeepLinkStore interface {
	SaveDeepLink(info domaintypes.MobileLinkInfo) error
	LoadDeepLink() (domaintypes.MobileLinkInfo, bool, error)
	RemoveDeepLink() error
}
