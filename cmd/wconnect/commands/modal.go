package commands

import (
	"fmt"
	"io"
	"sync"
)

// termModal prints the connection URI. A terminal has nothing to dismiss,
// so onClose never fires; interrupting the command ends the wait instead.
type termModal struct {
	out io.Writer

	mu   sync.Mutex
	open bool
}

func (m *termModal) Open(uri string, _ func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	fmt.Fprintf(m.out, "Paste this URI into your wallet:\n\n  %s\n\n", uri)
}

func (m *termModal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		m.open = false
		fmt.Fprintln(m.out, "Wallet answered.")
	}
}
