package parser

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-participatory/internal/domain"
)

// Block is one typed unit extracted from the source document, in document
// order. Article blocks carry the sequential label in Title.
type Block struct {
	Level domain.Level
	Title string
	Body  string
}

// Document is the parsed form of a markdown source: optional frontmatter
// metadata plus the ordered block sequence.
type Document struct {
	Metadata Metadata
	Blocks   []Block
}

// Articles counts the article blocks of the document.
func (d *Document) Articles() int {
	count := 0
	for _, block := range d.Blocks {
		if block.Level == domain.LevelArticle {
			count++
		}
	}
	return count
}

// Options configures the parser engine.
type Options struct {
	// Extensions names goldmark extensions to enable (gfm, table, footnote...).
	// Empty enables the GFM defaults.
	Extensions []string
	// MaxDocumentBytes rejects larger documents before parsing. Zero means
	// unbounded.
	MaxDocumentBytes int
}

// Parser converts markdown documents into typed block sequences. The parser
// is stateless so callers can reuse a single instance without locking.
type Parser struct {
	engine   goldmark.Markdown
	maxBytes int
}

// New constructs a parser with the supplied options.
func New(opts Options) *Parser {
	return &Parser{
		engine:   newEngine(opts),
		maxBytes: opts.MaxDocumentBytes,
	}
}

// Parse walks the document's block-level structure and emits typed blocks.
//
// Two counters run through the document: one advanced per block of any kind,
// one advanced per heading. An article's label is the difference of the two
// at the moment it is created, which makes labels advance by exactly one per
// article regardless of interleaved headings, without a second pass.
func (p *Parser) Parse(source []byte) (*Document, error) {
	if p.maxBytes > 0 && len(source) > p.maxBytes {
		return nil, &ParseError{Reason: "document exceeds size limit"}
	}

	meta, body, err := ParseMetadata(source)
	if err != nil {
		return nil, &ParseError{Reason: "invalid document header", Err: err}
	}

	root := p.engine.Parser().Parse(text.NewReader(body))

	doc := &Document{Metadata: meta}
	positionCounter := 0
	headingCounter := 0

	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		switch block := child.(type) {
		case *ast.Heading:
			level := domain.LevelSubSection
			if block.Level == 1 {
				level = domain.LevelSection
			}
			heading := blockText(block, body)
			if heading == "" {
				continue
			}
			positionCounter++
			headingCounter++
			doc.Blocks = append(doc.Blocks, Block{
				Level: level,
				Title: heading,
				Body:  heading,
			})
		case *ast.Paragraph:
			paragraph := blockText(block, body)
			if paragraph == "" {
				continue
			}
			positionCounter++
			doc.Blocks = append(doc.Blocks, Block{
				Level: domain.LevelArticle,
				Title: strconv.Itoa(positionCounter - headingCounter),
				Body:  paragraph,
			})
		}
	}

	if len(doc.Blocks) == 0 {
		return nil, &ParseError{Reason: "document contains no content blocks"}
	}

	return doc, nil
}

// blockText collects the inline text of a block node. Images are skipped
// entirely so alt text never leaks into article bodies.
func blockText(node ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(node, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := child.(type) {
		case *ast.Image:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			sb.Write(n.Segment.Value(source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.String:
			sb.Write(n.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func newEngine(opts Options) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithParserOptions(
			gmparser.WithAutoHeadingID(),
		),
		goldmark.WithExtensions(collectExtensions(opts.Extensions)...),
	)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}

	return extenders
}
