package content

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-yaml"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pelletier/go-toml/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/GriffinCanCode/LearnReact/internal/domain/quiz"
	"github.com/GriffinCanCode/LearnReact/internal/domain/sandbox"
	"github.com/GriffinCanCode/LearnReact/internal/shared/utils"
)

var (
	yamlFence = []byte("---\n")
	tomlFence = []byte("+++\n")
)

// Parser turns lesson markdown into a Lesson.
type Parser struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// NewParser creates a parser with GFM and heading anchors enabled.
func NewParser() *Parser {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").Matching(utils.SafeIDPattern).OnElements("h1", "h2", "h3", "h4", "h5", "h6")

	return &Parser{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		sanitizer: policy,
	}
}

// Parse parses one lesson file. name is used for errors and as the fallback slug.
func (p *Parser) Parse(name string, data []byte) (*Lesson, error) {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLesson, name, err)
	}

	if fm.Slug == "" {
		fm.Slug = slugFromName(name)
	}
	if err := utils.ValidateSlug(fm.Slug, true); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLesson, name, err)
	}
	if strings.TrimSpace(fm.Title) == "" {
		return nil, fmt.Errorf("%w: %s: title is required", ErrInvalidLesson, name)
	}

	lesson := &Lesson{
		Slug:        fm.Slug,
		Title:       fm.Title,
		Description: fm.Description,
		Order:       fm.Order,
		Sandboxes:   make(map[string]sandbox.Seed),
		Quizzes:     make(map[string][]quiz.Question),
		Source:      name,
	}

	headerLines := bytes.Count(data[:len(data)-len(body)], []byte("\n"))
	doc := p.md.Parser().Parse(text.NewReader(body))

	var (
		widgets []ast.Node
		section string
	)
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			if anchor, ok := node.AttributeString("id"); ok {
				if b, ok := anchor.([]byte); ok {
					section = string(b)
				}
			}
		case *ast.FencedCodeBlock:
			block, err := p.widgetBlock(lesson, node, body, section, headerLines)
			if err != nil {
				return ast.WalkStop, err
			}
			if block != nil {
				lesson.Blocks = append(lesson.Blocks, *block)
				widgets = append(widgets, n)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLesson, name, err)
	}

	for _, n := range widgets {
		if parent := n.Parent(); parent != nil {
			parent.RemoveChild(parent, n)
		}
	}

	var buf bytes.Buffer
	if err := p.md.Renderer().Render(&buf, body, doc); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}

	lesson.HTML = p.sanitizer.Sanitize(buf.String())
	lesson.TOC, err = tableOfContents(lesson.HTML)
	if err != nil {
		return nil, fmt.Errorf("table of contents %s: %w", name, err)
	}

	return lesson, nil
}

// widgetBlock extracts a sandbox or quiz block. Other fenced blocks return nil.
func (p *Parser) widgetBlock(lesson *Lesson, fenced *ast.FencedCodeBlock, source []byte, section string, lineOffset int) (*Block, error) {
	if fenced.Info == nil {
		return nil, nil
	}

	fields := splitInfo(string(fenced.Info.Segment.Value(source)))
	if len(fields) == 0 {
		return nil, nil
	}
	kind := fields[0]
	if kind != KindSandbox && kind != KindQuiz {
		return nil, nil
	}
	attrs := attributes(fields[1:])

	blockID := attrs["id"]
	if err := utils.ValidateID(blockID, kind+" id", true); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	lines := fenced.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}

	line := lineOffset + 1
	if lines.Len() > 0 {
		line = lineOffset + bytes.Count(source[:lines.At(0).Start], []byte("\n"))
	}

	switch kind {
	case KindSandbox:
		if _, dup := lesson.Sandboxes[blockID]; dup {
			return nil, fmt.Errorf("duplicate sandbox id %q", blockID)
		}
		seed := sandbox.Seed{
			InitialCode:  strings.TrimRight(buf.String(), "\n"),
			Language:     attrs["language"],
			FileName:     attrs["file"],
			Instructions: attrs["instructions"],
		}
		if err := utils.ValidateFileName(seed.FileName); err != nil {
			return nil, fmt.Errorf("sandbox %q: %w", blockID, err)
		}
		lesson.Sandboxes[blockID] = seed

	case KindQuiz:
		if _, dup := lesson.Quizzes[blockID]; dup {
			return nil, fmt.Errorf("duplicate quiz id %q", blockID)
		}
		var entries []quiz.BankEntry
		if err := yaml.Unmarshal(buf.Bytes(), &entries); err != nil {
			return nil, fmt.Errorf("quiz %q: %w", blockID, err)
		}
		questions, err := quiz.ResolveBank(entries)
		if err != nil {
			return nil, fmt.Errorf("quiz %q: %w", blockID, err)
		}
		lesson.Quizzes[blockID] = questions
	}

	return &Block{Kind: kind, ID: blockID, Section: section, Line: line}, nil
}

func splitFrontmatter(data []byte) (Frontmatter, []byte, error) {
	var fm Frontmatter

	var fence []byte
	switch {
	case bytes.HasPrefix(data, yamlFence):
		fence = yamlFence
	case bytes.HasPrefix(data, tomlFence):
		fence = tomlFence
	default:
		return fm, data, nil
	}

	rest := data[len(fence):]
	end := bytes.Index(rest, append([]byte("\n"), fence...))
	if end < 0 {
		return fm, nil, fmt.Errorf("unclosed frontmatter")
	}
	header := rest[:end]
	body := rest[end+1+len(fence):]

	var err error
	if bytes.Equal(fence, yamlFence) {
		err = yaml.Unmarshal(header, &fm)
	} else {
		err = toml.Unmarshal(header, &fm)
	}
	if err != nil {
		return fm, nil, fmt.Errorf("frontmatter: %w", err)
	}
	return fm, body, nil
}

func tableOfContents(html string) ([]Heading, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	toc := []Heading{}
	doc.Find("h2, h3").Each(func(_ int, s *goquery.Selection) {
		level := 2
		if goquery.NodeName(s) == "h3" {
			level = 3
		}
		toc = append(toc, Heading{
			Level:  level,
			Anchor: s.AttrOr("id", ""),
			Text:   strings.TrimSpace(s.Text()),
		})
	})
	return toc, nil
}

// splitInfo splits a fence info string on spaces, keeping quoted values whole.
func splitInfo(info string) []string {
	var (
		fields  []string
		current strings.Builder
		quote   rune
	)
	flush := func() {
		if current.Len() > 0 {
			fields = append(fields, current.String())
			current.Reset()
		}
	}

	for _, r := range info {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
		case unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return fields
}

func attributes(fields []string) map[string]string {
	attrs := make(map[string]string, len(fields))
	for _, field := range fields {
		if key, value, ok := strings.Cut(field, "="); ok {
			attrs[key] = value
		}
	}
	return attrs
}

func slugFromName(name string) string {
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(name, "\\", "/")), path.Ext(name))
	base = strings.ToLower(base)
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '_' {
			return '-'
		}
		return r
	}, base)
}
