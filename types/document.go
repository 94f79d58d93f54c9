package types

// ContentTypeMarkdown is the fixed content-type tag attached to every loaded
// document's metadata.
const ContentTypeMarkdown = "content_markdown"

// Document represents one raw markdown file loaded from the content directory.
type Document struct {
	Name     string            // base filename, e.g. "remidi-4.md"
	Content  string            // raw file content
	Metadata map[string]string // route, type
}

// Chunk is a retrieval-sized span of a Document's content. Metadata is the
// union of the parent Document's metadata and the header path the span fell
// under, header values winning on key collision.
type Chunk struct {
	Content  string            `json:"content"`
	Source   string            `json:"source"`
	Metadata map[string]string `json:"metadata"`
}

// ChunkerConfig controls the second-stage size split.
type ChunkerConfig struct {
	MaxChunkSize int // target characters per chunk
	OverlapSize  int // characters shared between adjacent chunks
}

// RetrievedPassage is a chunk returned by retrieval with its similarity score.
type RetrievedPassage struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// SourceGroup collects the retrieved passages of one document, in retrieval
// rank order. Groups themselves are ordered by first occurrence of the source.
type SourceGroup struct {
	Source   string   `json:"source"`
	Contents []string `json:"contents"`
}
