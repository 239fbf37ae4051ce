// Package memzero clears key material held in byte slices.
package memzero

import "crypto/subtle"

// Zero overwrites b with zeros through a constant-time copy, which the
// compiler does not elide.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
}

// ZeroAll zeroes every slice in bs.
func ZeroAll(bs ...[]byte) {
	for _, b := range bs {
		Zero(b)
	}
}
