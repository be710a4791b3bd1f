package summarize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_ShortTextIsOneChunk(t *testing.T) {
	text := "First sentence. Second sentence! Third sentence?"
	chunks := Split(text, 1000)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplit_RoundTrip(t *testing.T) {
	text := "One two three. Four five six! Seven eight?  Nine ten.\nEleven twelve. Thirteen"
	chunks := Split(text, 20)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplit_RespectsChunkLimit(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("This is a perfectly ordinary sentence about nothing much. ")
	}
	text := sb.String()

	chunks := Split(text, 200)
	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 200, "chunk %d too large", i)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplit_OversizedSentenceStandsAlone(t *testing.T) {
	long := strings.Repeat("word ", 60) + "end."
	text := "Short. " + long + " Tail."

	chunks := Split(text, 50)
	require.Greater(t, len(chunks), 1)

	found := false
	for _, chunk := range chunks {
		if strings.Contains(chunk, "end.") {
			found = true
			assert.Greater(t, len(chunk), 50)
			// the oversized sentence must not drag neighbors along
			assert.NotContains(t, chunk, "Short.")
			assert.NotContains(t, chunk, "Tail.")
		}
	}
	assert.True(t, found)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplit_NoTrailingPunctuation(t *testing.T) {
	text := "A sentence. And then a trailing fragment with no period"
	chunks := Split(text, 1000)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplit_Empty(t *testing.T) {
	assert.Nil(t, Split("", 100))
}

func TestSplit_PunctuationWithoutSpaceIsNotABoundary(t *testing.T) {
	text := "Version 1.5 is out. It works."
	chunks := Split(text, 25)
	require.Len(t, chunks, 2)
	assert.Equal(t, "Version 1.5 is out.", chunks[0])
}
