package service

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/songwish/assistant-be/types"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const maxHeaderDepth = 4

// CorpusService loads the markdown content directory and splits it into
// retrieval-sized chunks. Splitting is two-stage: header-aware first, then
// fixed-size with overlap inside each header-delimited section.
type CorpusService struct {
	maxChunkSize int
	overlapSize  int
}

var DefaultChunkerConfig = types.ChunkerConfig{
	MaxChunkSize: 1500,
	OverlapSize:  50,
}

func NewCorpusService(config types.ChunkerConfig) *CorpusService {
	if config.MaxChunkSize <= 0 {
		config.MaxChunkSize = DefaultChunkerConfig.MaxChunkSize
	}
	if config.OverlapSize < 0 || config.OverlapSize >= config.MaxChunkSize {
		config.OverlapSize = DefaultChunkerConfig.OverlapSize
	}
	return &CorpusService{
		maxChunkSize: config.MaxChunkSize,
		overlapSize:  config.OverlapSize,
	}
}

// LoadDocuments reads every markdown file in docsPath into a Document with
// route and content-type metadata attached. A missing directory is created
// empty and yields zero documents rather than an error.
func (s *CorpusService) LoadDocuments(docsPath string) ([]types.Document, error) {
	if _, err := os.Stat(docsPath); os.IsNotExist(err) {
		if err := os.MkdirAll(docsPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create content directory: %w", err)
		}
		log.Printf("Created content directory: %s", docsPath)
		return nil, nil
	}

	entries, err := os.ReadDir(docsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read content directory: %w", err)
	}

	var docs []types.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(docsPath, entry.Name()))
		if err != nil {
			log.Printf("Warning: failed to read %s: %v", entry.Name(), err)
			continue
		}
		docs = append(docs, types.Document{
			Name:    entry.Name(),
			Content: string(content),
			Metadata: map[string]string{
				"route": RouteFor(entry.Name()),
				"type":  types.ContentTypeMarkdown,
			},
		})
	}
	return docs, nil
}

// LoadAndChunk loads the corpus and chunks every document. A document whose
// split fails is skipped, so a partial corpus is an acceptable degraded
// result. An empty directory produces an empty slice, not an error.
func (s *CorpusService) LoadAndChunk(docsPath string) ([]types.Chunk, error) {
	docs, err := s.LoadDocuments(docsPath)
	if err != nil {
		return nil, err
	}

	var chunks []types.Chunk
	for _, doc := range docs {
		docChunks, err := s.ChunkDocument(doc)
		if err != nil {
			log.Printf("Error processing %s: %v", doc.Name, err)
			continue
		}
		chunks = append(chunks, docChunks...)
	}
	return chunks, nil
}

// headerSection is a span of document content together with the heading path
// it fell under, most specific heading last.
type headerSection struct {
	content string
	headers map[string]string
}

// ChunkDocument splits one document by markdown headings, then size-splits
// each section. Chunk metadata is the union of document metadata and the
// section's header path, header values winning on collision.
func (s *CorpusService) ChunkDocument(doc types.Document) (chunks []types.Chunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			chunks = nil
			err = fmt.Errorf("chunking panicked: %v", r)
		}
	}()

	sections := splitByHeaders(doc.Content)
	for _, section := range sections {
		for _, piece := range s.splitWithOverlap(section.content) {
			metadata := make(map[string]string, len(doc.Metadata)+len(section.headers))
			for k, v := range doc.Metadata {
				metadata[k] = v
			}
			for k, v := range section.headers {
				metadata[k] = v
			}
			chunks = append(chunks, types.Chunk{
				Content:  piece,
				Source:   doc.Name,
				Metadata: metadata,
			})
		}
	}
	return chunks, nil
}

// splitByHeaders walks the markdown AST and cuts the document at headings of
// level 1-4. Each section carries the heading hierarchy active over it, e.g.
// {"header1": "reMIDI 4", "header2": "Installation"}.
func splitByHeaders(content string) []headerSection {
	src := []byte(content)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var sections []headerSection
	current := map[string]string{}
	var buf bytes.Buffer

	flush := func() {
		body := strings.TrimSpace(buf.String())
		if body != "" {
			headers := make(map[string]string, len(current))
			for k, v := range current {
				headers[k] = v
			}
			sections = append(sections, headerSection{content: body, headers: headers})
		}
		buf.Reset()
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if heading, ok := n.(*ast.Heading); ok && heading.Level <= maxHeaderDepth {
			flush()
			// A heading at level L invalidates all deeper levels.
			for lvl := heading.Level; lvl <= maxHeaderDepth; lvl++ {
				delete(current, headerKey(lvl))
			}
			current[headerKey(heading.Level)] = string(heading.Text(src))
			continue
		}
		if t := blockText(n, src); t != "" {
			if buf.Len() > 0 {
				buf.WriteString("\n\n")
			}
			buf.WriteString(t)
		}
	}
	flush()
	return sections
}

func headerKey(level int) string {
	return fmt.Sprintf("header%d", level)
}

// blockText extracts the raw text of a non-heading block node.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	if buf.Len() == 0 {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t := blockText(c, src); t != "" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
				buf.WriteString(t)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// splitWithOverlap cuts text into fixed-size windows of maxChunkSize runes
// where each window after the first repeats the last overlapSize runes of its
// predecessor. Dropping that prefix from every chunk but the first
// reconstructs the section exactly.
func (s *CorpusService) splitWithOverlap(content string) []string {
	runes := []rune(content)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.maxChunkSize {
		return []string{content}
	}

	var pieces []string
	start := 0
	for start < len(runes) {
		end := start + s.maxChunkSize
		if end >= len(runes) {
			pieces = append(pieces, string(runes[start:]))
			break
		}
		pieces = append(pieces, string(runes[start:end]))
		start = end - s.overlapSize
	}
	return pieces
}

// SortedSources returns the distinct source filenames of a chunk set, sorted.
// Used by the status endpoint and the offline index command.
func SortedSources(chunks []types.Chunk) []string {
	seen := map[string]bool{}
	var sources []string
	for _, c := range chunks {
		if !seen[c.Source] {
			seen[c.Source] = true
			sources = append(sources, c.Source)
		}
	}
	sort.Strings(sources)
	return sources
}
