package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDefaults(t *testing.T) {
	var c RetrievalConfig
	c.Normalize()
	assert.Equal(t, DefaultRelevanceScore, c.RelevanceScore)
	assert.Equal(t, DefaultKValue, c.KValue)
	assert.Equal(t, DefaultChunkSize, c.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, c.ChunkOverlap)
}

func TestNormalizeKeepsValidValues(t *testing.T) {
	c := RetrievalConfig{RelevanceScore: 0.5, KValue: 10, ChunkSize: 200, ChunkOverlap: 50}
	c.Normalize()
	assert.Equal(t, 0.5, c.RelevanceScore)
	assert.Equal(t, 10, c.KValue)
	assert.Equal(t, 200, c.ChunkSize)
	assert.Equal(t, 50, c.ChunkOverlap)
}

func TestNormalizeOverlapClamp(t *testing.T) {
	c := RetrievalConfig{ChunkSize: 100, ChunkOverlap: 100}
	c.Normalize()
	assert.Equal(t, 50, c.ChunkOverlap)

	c = RetrievalConfig{ChunkSize: 100, ChunkOverlap: 500}
	c.Normalize()
	assert.Less(t, c.ChunkOverlap, c.ChunkSize)
}

func TestNormalizeRelevanceBounds(t *testing.T) {
	for _, score := range []float64{-0.1, 0, 1.5} {
		c := RetrievalConfig{RelevanceScore: score}
		c.Normalize()
		assert.Equal(t, DefaultRelevanceScore, c.RelevanceScore)
	}
}
