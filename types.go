package docpreview

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Kind names a record variant.
type Kind string

const (
	KindRow      Kind = "row"
	KindFile     Kind = "file"
	KindKeyValue Kind = "keyvalue"
)

// Kinds lists every record kind the composer renders.
var Kinds = []Kind{KindRow, KindFile, KindKeyValue}

// Payload is the content of one record. The set of payloads is closed:
// only Row, FileBlock and KeyValueBlock implement it.
type Payload interface {
	Kind() Kind
	isPayload()
}

// Row is one table row. Cells line up with Document.Columns.
type Row struct {
	Cells []string
}

// FileBlock is a file or image attached to the document. Source is a local
// path, an http(s) URL or a data URI.
type FileBlock struct {
	Name    string
	Source  string
	Caption string
}

// KeyValueBlock is a titled list of fields, e.g. vendor or shipping details.
type KeyValueBlock struct {
	Title  string
	Fields []Field
}

// Field is one key-value pair.
type Field struct {
	Key   string
	Value string
}

func (Row) Kind() Kind           { return KindRow }
func (FileBlock) Kind() Kind     { return KindFile }
func (KeyValueBlock) Kind() Kind { return KindKeyValue }

func (Row) isPayload()           {}
func (FileBlock) isPayload()     {}
func (KeyValueBlock) isPayload() {}

// Record is one item placed on a page.
type Record struct {
	Payload Payload
}

// Kind returns the payload's kind, or "" for an empty record.
func (r Record) Kind() Kind {
	if r.Payload == nil {
		return ""
	}
	return r.Payload.Kind()
}

// NewRow, NewFile and NewKeyValue build records without spelling out the
// payload wrapper.
func NewRow(cells ...string) Record {
	return Record{Payload: Row{Cells: cells}}
}

func NewFile(name, source, caption string) Record {
	return Record{Payload: FileBlock{Name: name, Source: source, Caption: caption}}
}

func NewKeyValue(title string, fields ...Field) Record {
	return Record{Payload: KeyValueBlock{Title: title, Fields: fields}}
}

// Page is one planned page. Index is zero-based.
type Page struct {
	Index   int
	IsFirst bool
	IsLast  bool
	Records []Record
}

// Document is the input of an export.
type Document struct {
	Kind      string // document kind, e.g. "purchase-order"; names the artifact
	Title     string
	Reference string
	CreatedBy string
	CreatedAt string // free text or "auto[:FORMAT]"
	Note      string // footer text
	Columns   []string
	Records   []Record
	Policy    CapacityPolicy // zero value = DefaultPolicy()

	// BaseDir resolves relative FileBlock sources. Empty = working directory.
	BaseDir string
}

// Validate checks that the document can be composed.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Kind) == "" {
		return ErrEmptyKind
	}
	for i, r := range d.Records {
		if r.Payload == nil {
			return fmt.Errorf("%w: record %d has no payload", ErrUnknownRecordKind, i)
		}
	}
	return nil
}

// EffectivePolicy is d.Policy, or DefaultPolicy when none is set.
func (d *Document) EffectivePolicy() CapacityPolicy {
	if d.Policy.IsZero() {
		return DefaultPolicy()
	}
	return d.Policy
}

// Pages plans the document's records under EffectivePolicy.
func (d *Document) Pages() []Page {
	return Plan(d.Records, d.EffectivePolicy())
}

// KindLabel turns "purchase-order" into "Purchase Order".
func (d *Document) KindLabel() string {
	words := strings.FieldsFunc(d.Kind, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// ptPerPx converts CSS pixels (96 dpi) to PDF points (72 dpi).
const ptPerPx = 0.75

// PageBoundary is the physical page size shared by the composer and the
// raster pipeline. Both must see the same value or page breaks and band
// breaks drift apart.
type PageBoundary struct {
	WidthPx  int
	HeightPx int
}

// A4 at 96 dpi.
var A4 = PageBoundary{WidthPx: 794, HeightPx: 1122}

func (b PageBoundary) WidthPt() float64  { return float64(b.WidthPx) * ptPerPx }
func (b PageBoundary) HeightPt() float64 { return float64(b.HeightPx) * ptPerPx }

func (b PageBoundary) WidthInches() float64  { return float64(b.WidthPx) / 96 }
func (b PageBoundary) HeightInches() float64 { return float64(b.HeightPx) / 96 }

func (b PageBoundary) Validate() error {
	if b.HeightPx <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageHeight, b.HeightPx)
	}
	if b.WidthPx <= 0 {
		return fmt.Errorf("page width must be positive, got %d", b.WidthPx)
	}
	return nil
}

// CaptureSurface is the composed document: every page stacked vertically,
// each exactly one physical page tall.
type CaptureSurface struct {
	HTML       string
	Boundary   PageBoundary
	PageCount  int
	WidthPx    int
	HeightPx   int // PageCount * Boundary.HeightPx
	ImageCount int
	Budget     HeightBudget // budget the surface was composed with
}

// RasterBand is one page-high slice of the captured surface, in CSS px.
// HeightPx is below the page height only for the last band.
type RasterBand struct {
	SourceYOffsetPx float64
	HeightPx        float64
}

// ExportMode distinguishes raster export from native print.
type ExportMode string

const (
	ModeRaster ExportMode = "raster"
	ModePrint  ExportMode = "print"
)

// ExportArtifact is the result of one export.
type ExportArtifact struct {
	ExportID     string
	Mode         ExportMode
	Filename     string
	Data         []byte
	PageCount    int
	Bands        []RasterBand // empty in print mode
	Warnings     int          // images that failed to load
	FailedAssets []string
	CreatedAt    time.Time
	Path         string // set once an ArtifactSink has stored it
}
