package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/songwish/assistant-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadDocumentsMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "content")
	s := NewCorpusService(DefaultChunkerConfig)

	docs, err := s.LoadDocuments(dir)
	require.NoError(t, err)
	assert.Empty(t, docs)

	// The directory is created so a later content fetch has a target.
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoadDocumentsSkipsNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "remidi-4.md", "# reMIDI 4\n\nA polyphonic sampler.")
	writeDoc(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))

	s := NewCorpusService(DefaultChunkerConfig)
	docs, err := s.LoadDocuments(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "remidi-4.md", docs[0].Name)
	assert.Equal(t, "/products/remidi-4", docs[0].Metadata["route"])
	assert.Equal(t, types.ContentTypeMarkdown, docs[0].Metadata["type"])
}

func TestChunkDocumentHeaderMetadata(t *testing.T) {
	s := NewCorpusService(DefaultChunkerConfig)
	doc := types.Document{
		Name: "remidi-4.md",
		Content: "# reMIDI 4\n\nIntro paragraph.\n\n" +
			"## Installation\n\nDrag the plugin into your DAW.\n\n" +
			"## Features\n\nLoop slicing and key mapping.\n\n" +
			"# Support\n\nEmail us.",
		Metadata: map[string]string{"route": "/products/remidi-4"},
	}

	chunks, err := s.ChunkDocument(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	assert.Equal(t, "Intro paragraph.", chunks[0].Content)
	assert.Equal(t, "reMIDI 4", chunks[0].Metadata["header1"])
	_, hasH2 := chunks[0].Metadata["header2"]
	assert.False(t, hasH2)

	assert.Equal(t, "reMIDI 4", chunks[1].Metadata["header1"])
	assert.Equal(t, "Installation", chunks[1].Metadata["header2"])
	assert.Equal(t, "Features", chunks[2].Metadata["header2"])

	// A new H1 resets the deeper levels.
	assert.Equal(t, "Support", chunks[3].Metadata["header1"])
	_, hasH2 = chunks[3].Metadata["header2"]
	assert.False(t, hasH2)

	// Document metadata is carried onto every chunk.
	for _, c := range chunks {
		assert.Equal(t, "/products/remidi-4", c.Metadata["route"])
		assert.Equal(t, "remidi-4.md", c.Source)
	}
}

func TestChunkDocumentDeterministic(t *testing.T) {
	s := NewCorpusService(DefaultChunkerConfig)
	doc := types.Document{
		Name:    "faq.md",
		Content: "# FAQ\n\n" + strings.Repeat("How do I install the plugin? ", 200),
	}

	first, err := s.ChunkDocument(doc)
	require.NoError(t, err)
	second, err := s.ChunkDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSplitWithOverlapRoundTrip(t *testing.T) {
	s := NewCorpusService(types.ChunkerConfig{MaxChunkSize: 100, OverlapSize: 20})
	text := strings.Repeat("abcdefghij", 55) // 550 runes

	pieces := s.splitWithOverlap(text)
	require.Greater(t, len(pieces), 1)

	for i, p := range pieces[:len(pieces)-1] {
		assert.Len(t, []rune(p), 100, "piece %d", i)
	}

	// Dropping the overlap prefix from every piece but the first
	// reconstructs the input exactly.
	rebuilt := pieces[0]
	for _, p := range pieces[1:] {
		rebuilt += string([]rune(p)[20:])
	}
	assert.Equal(t, text, rebuilt)
}

func TestSplitWithOverlapShortInput(t *testing.T) {
	s := NewCorpusService(types.ChunkerConfig{MaxChunkSize: 100, OverlapSize: 20})
	assert.Equal(t, []string{"short"}, s.splitWithOverlap("short"))
	assert.Nil(t, s.splitWithOverlap(""))
}

func TestLoadAndChunkEmptyDirectory(t *testing.T) {
	s := NewCorpusService(DefaultChunkerConfig)
	chunks, err := s.LoadAndChunk(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSortedSources(t *testing.T) {
	chunks := []types.Chunk{
		{Source: "b.md"},
		{Source: "a.md"},
		{Source: "b.md"},
		{Source: "c.md"},
	}
	assert.Equal(t, []string{"a.md", "b.md", "c.md"}, SortedSources(chunks))
}
