package docpreview

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/Abdul-Razack/docpreview/internal/assets"
	"github.com/Abdul-Razack/docpreview/internal/dateutil"
	"github.com/Abdul-Razack/docpreview/internal/fileutil"
)

// DefaultMaxInlineBytes caps local images embedded as data URIs. Larger
// files are referenced by file:// URL instead.
const DefaultMaxInlineBytes = 8 << 20

// stampFormat renders the generation time in the footer.
const stampFormat = "stamp"

// requiredTemplates must be defined by every template set.
var requiredTemplates = []string{"document", "header", "title", "footer", "table", "file", "keyvalue"}

// ComposerConfig tunes a DocumentComposer. Zero values use defaults.
type ComposerConfig struct {
	Lang           string // html lang attribute, default "en"
	Note           string // footer note when the document has none
	MaxInlineBytes int64
	Now            func() time.Time
	Logger         *zap.Logger
}

// DocumentComposer renders planned pages into one capture surface. Every
// page is exactly one physical page tall, so slicing the captured bitmap
// every PageBoundary.HeightPx lands on the planner's page breaks.
type DocumentComposer struct {
	tmpl      *template.Template
	style     template.CSS
	boundary  PageBoundary
	lang      string
	note      string
	maxInline int64
	now       func() time.Time
	log       *zap.Logger
}

// NewDocumentComposer parses ts and binds it to style and boundary.
func NewDocumentComposer(ts *assets.TemplateSet, style string, boundary PageBoundary, cfg ComposerConfig) (*DocumentComposer, error) {
	if err := boundary.Validate(); err != nil {
		return nil, err
	}
	if ts == nil {
		return nil, fmt.Errorf("%w: no template set", ErrTemplateSetNotFound)
	}

	tmpl := template.New(ts.Name)
	for _, src := range ts.Sources() {
		if _, err := tmpl.Parse(src); err != nil {
			return nil, fmt.Errorf("%w: parsing template set %q: %v", ErrComposeFailed, ts.Name, err)
		}
	}
	for _, name := range requiredTemplates {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("%w: %q does not define %q", ErrIncompleteTemplateSet, ts.Name, name)
		}
	}

	c := &DocumentComposer{
		tmpl:      tmpl,
		style:     template.CSS(style), // #nosec G203 -- style comes from the asset loader, not from documents
		boundary:  boundary,
		lang:      cfg.Lang,
		note:      cfg.Note,
		maxInline: cfg.MaxInlineBytes,
		now:       cfg.Now,
		log:       cfg.Logger,
	}
	if c.lang == "" {
		c.lang = "en"
	}
	if c.maxInline <= 0 {
		c.maxInline = DefaultMaxInlineBytes
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c, nil
}

// Boundary returns the page size the composer lays pages out at.
func (c *DocumentComposer) Boundary() PageBoundary { return c.boundary }

// ---------------------------------------------------------------------------
// View model
// ---------------------------------------------------------------------------

type documentView struct {
	Lang     string
	Title    string
	Style    template.CSS
	WidthPx  int
	HeightPx int
	Binding  string
	Pages    []pageView
}

type pageView struct {
	Number        int
	Total         int
	IsFirst       bool
	IsLast        bool
	ContentMinPx  int
	PaddingPx     int
	TitleHeightPx int
	Meta          metaView
	Body          template.HTML
}

type metaView struct {
	KindLabel   string
	Title       string
	Reference   string
	CreatedBy   string
	CreatedAt   string
	Note        string
	GeneratedAt string
}

type tableView struct {
	Columns []string
	Rows    [][]string
}

type fileView struct {
	Name      string
	Src       template.URL
	Caption   string
	IsImage   bool
	Extension string
}

type kvView struct {
	Title  string
	Fields []Field
}

// ---------------------------------------------------------------------------
// Compose
// ---------------------------------------------------------------------------

// Compose renders pages with budget into a surface. pages normally comes
// from Plan(doc.Records, ...); when it is empty the document's own records
// are planned with doc.Pages, so a document without records still gets one
// empty page and no record is dropped.
func (c *DocumentComposer) Compose(ctx context.Context, doc *Document, pages []Page, budget HeightBudget) (*CaptureSurface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		pages = doc.Pages()
	}

	meta, err := c.meta(doc)
	if err != nil {
		return nil, err
	}

	view := documentView{
		Lang:     c.lang,
		Title:    meta.Title,
		Style:    c.style,
		WidthPx:  c.boundary.WidthPx,
		HeightPx: c.boundary.HeightPx,
		Binding:  blockBinding,
		Pages:    make([]pageView, len(pages)),
	}

	for i, p := range pages {
		body, err := c.renderRecords(doc, p.Records)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		view.Pages[i] = pageView{
			Number:        i + 1,
			Total:         len(pages),
			IsFirst:       i == 0,
			IsLast:        i == len(pages)-1,
			ContentMinPx:  int(budget.ContentHeight(i == 0)),
			PaddingPx:     int(budget.PageMarginPx / 2),
			TitleHeightPx: int(budget.FirstPageMarginPx - budget.PageMarginPx),
			Meta:          meta,
			Body:          body,
		}
	}

	var buf bytes.Buffer
	if err := c.tmpl.ExecuteTemplate(&buf, "document", view); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrComposeFailed, err)
	}

	out := buf.String()
	return &CaptureSurface{
		HTML:       out,
		Boundary:   c.boundary,
		PageCount:  len(pages),
		WidthPx:    c.boundary.WidthPx,
		HeightPx:   len(pages) * c.boundary.HeightPx,
		ImageCount: countImages(out),
		Budget:     budget,
	}, nil
}

func (c *DocumentComposer) meta(doc *Document) (metaView, error) {
	now := c.now()

	createdAt, err := dateutil.ResolveDate(doc.CreatedAt, now)
	if err != nil {
		return metaView{}, fmt.Errorf("%w: created at: %v", ErrComposeFailed, err)
	}
	stamp, err := dateutil.Format(stampFormat, now)
	if err != nil {
		return metaView{}, fmt.Errorf("%w: %v", ErrComposeFailed, err)
	}

	note := doc.Note
	if note == "" {
		note = c.note
	}
	title := doc.Title
	if title == "" {
		title = doc.KindLabel()
	}

	return metaView{
		KindLabel:   doc.KindLabel(),
		Title:       title,
		Reference:   doc.Reference,
		CreatedBy:   doc.CreatedBy,
		CreatedAt:   createdAt,
		Note:        note,
		GeneratedAt: stamp,
	}, nil
}

// renderRecords renders one page's records in order. Consecutive rows share
// one table so column widths stay aligned within the run.
func (c *DocumentComposer) renderRecords(doc *Document, records []Record) (template.HTML, error) {
	var buf bytes.Buffer
	var rows [][]string

	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		err := c.tmpl.ExecuteTemplate(&buf, "table", tableView{Columns: doc.Columns, Rows: rows})
		rows = nil
		return err
	}

	for i, r := range records {
		switch p := r.Payload.(type) {
		case Row:
			rows = append(rows, p.Cells)
			continue
		case FileBlock:
			if err := flush(); err != nil {
				return "", fmt.Errorf("%w: %v", ErrComposeFailed, err)
			}
			if err := c.tmpl.ExecuteTemplate(&buf, "file", c.fileView(p, doc.BaseDir)); err != nil {
				return "", fmt.Errorf("%w: %v", ErrComposeFailed, err)
			}
		case KeyValueBlock:
			if err := flush(); err != nil {
				return "", fmt.Errorf("%w: %v", ErrComposeFailed, err)
			}
			if err := c.tmpl.ExecuteTemplate(&buf, "keyvalue", kvView(p)); err != nil {
				return "", fmt.Errorf("%w: %v", ErrComposeFailed, err)
			}
		default:
			return "", fmt.Errorf("%w: record %d (%T)", ErrUnknownRecordKind, i, r.Payload)
		}
	}
	if err := flush(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrComposeFailed, err)
	}

	return template.HTML(buf.String()), nil // #nosec G203 -- produced by html/template
}

// ---------------------------------------------------------------------------
// File blocks
// ---------------------------------------------------------------------------

var imageExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"webp": true, "bmp": true, "svg": true, "avif": true,
}

func (c *DocumentComposer) fileView(fb FileBlock, baseDir string) fileView {
	name := fb.Name
	if name == "" {
		name = filepath.Base(fb.Source)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		ext = strings.TrimPrefix(strings.ToLower(filepath.Ext(fb.Source)), ".")
	}
	v := fileView{Name: name, Caption: fb.Caption, Extension: strings.ToUpper(ext)}

	switch {
	case fb.Source == "":
		return v
	case fileutil.IsDataURI(fb.Source):
		if strings.HasPrefix(fb.Source, "data:image/") {
			v.IsImage = true
			v.Src = template.URL(fb.Source) // #nosec G203 -- restricted to image data
		}
		return v
	case fileutil.IsURL(fb.Source):
		v.IsImage = imageExtensions[ext]
		v.Src = template.URL(fb.Source) // #nosec G203 -- http(s) only
		return v
	}

	if !imageExtensions[ext] {
		return v
	}
	v.IsImage = true

	path, err := filepath.Abs(fileutil.ResolvePath(baseDir, fb.Source))
	if err != nil {
		path = fb.Source
	}
	src, err := c.inline(path, ext)
	if err != nil {
		// Left to fail in the browser; the readiness gate reports it.
		c.log.Debug("image not inlined", zap.String("path", path), zap.Error(err))
		src = (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
	}
	v.Src = template.URL(src) // #nosec G203 -- built from a local path or file content
	return v
}

// inline reads path into a data URI, detecting the MIME type from content.
func (c *DocumentComposer) inline(path, ext string) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- document attachments are user-supplied paths
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, c.maxInline+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > c.maxInline {
		return "", fmt.Errorf("image larger than %d bytes", c.maxInline)
	}

	mime := ""
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown && filetype.IsImage(data) {
		mime = kind.MIME.Value
	} else if ext == "svg" {
		mime = "image/svg+xml"
	} else {
		return "", fmt.Errorf("unrecognized image content")
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// countImages counts <img> elements in a rendered surface.
func countImages(doc string) int {
	z := html.NewTokenizer(strings.NewReader(doc))
	n := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return n
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "img" {
				n++
			}
		}
	}
}
