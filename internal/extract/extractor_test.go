package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanCollapsesWhitespace(t *testing.T) {
	in := "  Erste   Zeile  \n\n\n\nZweite\t Zeile\n   \nDritte"
	want := "Erste Zeile\n\nZweite Zeile\n\nDritte"
	assert.Equal(t, want, Clean(in))
}

func TestCleanEmptyAndBlankOnly(t *testing.T) {
	assert.Equal(t, "", Clean(""))
	assert.Equal(t, "", Clean("\n\n  \n\t\n"))
}

func TestExtractPlainTextPassthrough(t *testing.T) {
	s := NewService()

	res := s.Extract(context.Background(), []byte("hello   world\n\n\nbye"), "text/plain")
	assert.True(t, res.OK)
	assert.Equal(t, "hello world\n\nbye", res.Text)
	assert.Equal(t, 1, res.PageCount)
}

func TestExtractDetectsTextWithoutMIME(t *testing.T) {
	s := NewService()

	res := s.Extract(context.Background(), []byte("plain ascii content"), "")
	assert.True(t, res.OK)
	assert.Equal(t, "plain ascii content", res.Text)
}

func TestExtractGarbageFailsClosed(t *testing.T) {
	s := NewService()

	// Declared as PDF but not parseable by either backend.
	res := s.Extract(context.Background(), []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0x01, 0x02}, "application/pdf")
	assert.False(t, res.OK)
	assert.Empty(t, res.Text)
	assert.Zero(t, res.PageCount)
}
