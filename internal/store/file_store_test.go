package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"wconnect/internal/domain"
	"wconnect/internal/store"
)

func fullSession() domain.Session {
	return domain.Session{
		Connected: true,
		Accounts:  []string{"0xabc", "0xdef"},
		ChainID:   1,
		NetworkID: 1,
		RPCURL:    "https://rpc.example",
		Bridge:    "https://bridge.example",
		Key:       "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff",
		ClientID:  "7d9f1c2e-0000-4000-8000-000000000001",
		ClientMeta: &domain.ClientMeta{
			Description: "dapp", URL: "https://dapp.example", Icons: []string{"https://dapp.example/i.png"}, Name: "Dapp",
		},
		PeerID: "7d9f1c2e-0000-4000-8000-000000000002",
		PeerMeta: &domain.ClientMeta{
			Description: "wallet", URL: "https://wallet.example", Icons: []string{}, Name: "Wallet",
		},
		HandshakeID:    1700000000000123,
		HandshakeTopic: "7d9f1c2e-0000-4000-8000-000000000003",
	}
}

func TestSession_SaveLoad_RoundTrip(t *testing.T) {
	stores := map[string]domain.SessionStore{
		"file":   store.NewSessionFileStore(t.TempDir(), ""),
		"sealed": store.NewSessionFileStore(t.TempDir(), "pass"),
		"memory": store.NewMemorySessionStore(),
	}
	for name, s := range stores {
		want := fullSession()
		if err := s.SaveSession(store.DefaultStorageKey, want); err != nil {
			t.Fatalf("%s: save session: %v", name, err)
		}
		got, ok, err := s.LoadSession(store.DefaultStorageKey)
		if err != nil || !ok {
			t.Fatalf("%s: load session: ok=%v err=%v", name, ok, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: mismatch after load:\n got %+v\nwant %+v", name, got, want)
		}
	}
}

func TestSession_Remove(t *testing.T) {
	dir := t.TempDir()
	s := store.NewSessionFileStore(dir, "")

	if err := s.RemoveSession("missing"); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
	if err := s.SaveSession("a", fullSession()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveSession("b", fullSession()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.RemoveSession("a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := s.LoadSession("a"); ok {
		t.Fatal("session a still present")
	}
	if _, ok, _ := s.LoadSession("b"); !ok {
		t.Fatal("session b lost")
	}
	if err := s.RemoveSession("b"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sessions.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected sessions file to be gone, stat err=%v", err)
	}
}

func TestSession_WithoutBridge_IsNotASession(t *testing.T) {
	s := store.NewSessionFileStore(t.TempDir(), "")
	rec := fullSession()
	rec.Bridge = ""
	if err := s.SaveSession(store.DefaultStorageKey, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok, err := s.LoadSession(store.DefaultStorageKey); ok || err != nil {
		t.Fatalf("expected no session, ok=%v err=%v", ok, err)
	}
}

func TestSession_WrongPassphrase_Fails(t *testing.T) {
	dir := t.TempDir()
	if err := store.NewSessionFileStore(dir, "correct").SaveSession("k", fullSession()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, _, err := store.NewSessionFileStore(dir, "wrong").LoadSession("k"); !errors.Is(err, store.ErrWrongPassphrase) {
		t.Fatalf("expected ErrWrongPassphrase, got %v", err)
	}
	if _, _, err := store.NewSessionFileStore(dir, "").LoadSession("k"); !errors.Is(err, store.ErrWrongPassphrase) {
		t.Fatalf("expected ErrWrongPassphrase without passphrase, got %v", err)
	}
}

func TestSession_FileMode(t *testing.T) {
	dir := t.TempDir()
	if err := store.NewSessionFileStore(dir, "").SaveSession("k", fullSession()); err != nil {
		t.Fatalf("save: %v", err)
	}
	fi, err := os.Stat(filepath.Join(dir, "sessions.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", fi.Mode().Perm())
	}
}

func TestDeepLink_SaveStripsQuery(t *testing.T) {
	stores := map[string]domain.DeepLinkStore{
		"file":   store.NewDeepLinkFileStore(t.TempDir()),
		"memory": &store.MemoryDeepLinkStore{},
	}
	for name, s := range stores {
		if _, ok, err := s.LoadDeepLink(); ok || err != nil {
			t.Fatalf("%s: expected empty store, ok=%v err=%v", name, ok, err)
		}
		if err := s.SaveDeepLink(domain.MobileLinkInfo{Name: "Rainbow", Href: "https://rnbwapp.com/wc?uri=wc:abc"}); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		got, ok, err := s.LoadDeepLink()
		if err != nil || !ok {
			t.Fatalf("%s: load: ok=%v err=%v", name, ok, err)
		}
		if got.Href != "https://rnbwapp.com/wc" || got.Name != "Rainbow" {
			t.Fatalf("%s: unexpected link %+v", name, got)
		}
		if err := s.RemoveDeepLink(); err != nil {
			t.Fatalf("%s: remove: %v", name, err)
		}
		if _, ok, _ := s.LoadDeepLink(); ok {
			t.Fatalf("%s: link still present", name)
		}
	}
}
