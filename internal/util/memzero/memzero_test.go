package memzero_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wconnect/internal/util/memzero"
)

func TestZeroAll(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{4, 5}
	memzero.ZeroAll(a, b, nil)
	assert.Equal(t, []byte{0, 0, 0}, a)
	assert.Equal(t, []byte{0, 0}, b)
}
