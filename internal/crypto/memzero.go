package crypto

import (
	"runtime"

	"wconnect/internal/util/memzero"
)

// Wipe zeroes key material in place. Best effort.
//
//go:noinline
func Wipe(b []byte) {
	memzero.Zero(b)
	runtime.KeepAlive(&b)
}
