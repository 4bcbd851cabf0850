package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToken(t *testing.T) {
	tok := Token(32)
	assert.Len(t, tok, 64)
	assert.NotEqual(t, tok, Token(32))
}
