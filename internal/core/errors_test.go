package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 1024))
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Len(t, Truncate(strings.Repeat("x", 5000), 1024), 1024)
}

func TestParseErrorUnwrap(t *testing.T) {
	cause := errors.New("bad bytes")
	err := &ParseError{FileName: "a.docx", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "a.docx")
}

func TestConversionErrorUnwrap(t *testing.T) {
	err := &ConversionError{FileName: "a.doc", Stage: "libreoffice", Err: ErrToolMissing}
	assert.ErrorIs(t, err, ErrToolMissing)
	assert.Contains(t, err.Error(), "libreoffice")
}
