package docpreview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"
)

// BandEncoding is the image codec used to embed the captured surface.
type BandEncoding string

const (
	EncodePNG  BandEncoding = "png"
	EncodeJPEG BandEncoding = "jpeg"
)

// Raster defaults.
const (
	DefaultOversampling = 2
	MaxOversampling     = 4
	DefaultJPEGQuality  = 92
)

// bandTolerancePx is the rounding residue a resized capture may carry below
// its last full page. Only resized captures are snapped; see snapResidue.
const bandTolerancePx = 0.5

const surfaceImageName = "surface"

// PlanBands slices a bitmap of bitmapHeight CSS px into page-high bands.
//
// The first band starts at 0. Each further band starts one page lower,
// for as long as content remains below the previous band, so a height in
// (k*pageHeight, (k+1)*pageHeight] gives k+1 bands. With legacy set,
// content remaining is tested with >= 0, so a bitmap that is an exact
// multiple of pageHeight gets one trailing blank band.
//
// A zero-height bitmap gives no bands; callers emit one empty page.
func PlanBands(bitmapHeight, pageHeight float64, legacy bool) ([]RasterBand, error) {
	if pageHeight <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidPageHeight, pageHeight)
	}
	if bitmapHeight <= 0 {
		return nil, nil
	}

	more := func(remaining float64) bool {
		if legacy {
			return remaining >= 0
		}
		return remaining > 0
	}

	bands := []RasterBand{{SourceYOffsetPx: 0, HeightPx: min(pageHeight, bitmapHeight)}}
	remaining := bitmapHeight - pageHeight
	for more(remaining) {
		// The bitmap is drawn at position on the new page, i.e. shifted up
		// by the offset of the band's top edge.
		position := remaining - bitmapHeight
		offset := -position
		bands = append(bands, RasterBand{
			SourceYOffsetPx: offset,
			HeightPx:        max(0, min(pageHeight, bitmapHeight-offset)),
		})
		remaining -= pageHeight
	}
	return bands, nil
}

// RasterConfig tunes a RasterExportPipeline. Zero values use defaults.
type RasterConfig struct {
	Oversampling       int
	LegacyTrailingBand bool
	Encoding           BandEncoding
	JPEGQuality        int
	SkipVerify         bool // skip the pdfcpu page count check
	Now                func() time.Time
	Logger             *zap.Logger
}

// RasterExportPipeline captures a ready surface as one bitmap and assembles
// it into a PDF with one page per band.
type RasterExportPipeline struct {
	boundary     PageBoundary
	oversampling int
	legacy       bool
	encoding     BandEncoding
	jpegQuality  int
	verify       bool
	now          func() time.Time
	log          *zap.Logger
}

func NewRasterExportPipeline(boundary PageBoundary, cfg RasterConfig) (*RasterExportPipeline, error) {
	if err := boundary.Validate(); err != nil {
		return nil, err
	}

	p := &RasterExportPipeline{
		boundary:     boundary,
		oversampling: cfg.Oversampling,
		legacy:       cfg.LegacyTrailingBand,
		encoding:     cfg.Encoding,
		jpegQuality:  cfg.JPEGQuality,
		verify:       !cfg.SkipVerify,
		now:          cfg.Now,
		log:          cfg.Logger,
	}
	if p.oversampling == 0 {
		p.oversampling = DefaultOversampling
	}
	if p.oversampling < 1 || p.oversampling > MaxOversampling {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidOversample, p.oversampling)
	}
	switch p.encoding {
	case "":
		p.encoding = EncodePNG
	case EncodePNG, EncodeJPEG:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidImageCodec, p.encoding)
	}
	if p.jpegQuality <= 0 || p.jpegQuality > 100 {
		p.jpegQuality = DefaultJPEGQuality
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	return p, nil
}

// Export captures ready and assembles the artifact. Any failure is a
// *CaptureError; the artifact is either complete or absent.
func (p *RasterExportPipeline) Export(ctx context.Context, ready *ReadyRoot, kind string) (*ExportArtifact, error) {
	id := uuid.NewString()
	log := p.log.With(zap.String("export_id", id))

	if ready == nil || ready.root == nil {
		return nil, &CaptureError{ExportID: id, Err: errors.New("render root not ready")}
	}
	surface := ready.surface
	height := p.boundary.HeightPx
	if surface != nil {
		height = surface.HeightPx
	}

	start := time.Now()
	data, err := ready.root.capture(ctx, captureRequest{
		WidthPx:  p.boundary.WidthPx,
		HeightPx: height,
		Scale:    float64(p.oversampling),
	})
	if err != nil {
		return nil, &CaptureError{ExportID: id, Err: err}
	}
	log.Debug("surface captured", zap.Int("bytes", len(data)), zap.Duration("took", time.Since(start)))

	var (
		img     image.Image
		resized bool
	)
	if len(data) > 0 {
		img, err = imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, &CaptureError{ExportID: id, Err: fmt.Errorf("decoding capture: %w", err)}
		}
		img, resized = p.normalize(img)
	}

	pdf, bands, err := p.assemble(img, resized)
	if err != nil {
		return nil, &CaptureError{ExportID: id, Err: err}
	}

	pages := max(len(bands), 1)
	if p.verify {
		n, err := api.PageCount(bytes.NewReader(pdf), nil)
		if err != nil {
			return nil, &CaptureError{ExportID: id, Err: fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)}
		}
		if n != pages {
			return nil, &CaptureError{ExportID: id, Err: fmt.Errorf("%w: %d pages, want %d", ErrArtifactCorrupt, n, pages)}
		}
	}

	if surface != nil && len(bands) > 0 && len(bands) != surface.PageCount {
		log.Warn("band count differs from planned pages",
			zap.Int("bands", len(bands)), zap.Int("pages", surface.PageCount))
	}

	report := ready.report
	now := p.now()
	return &ExportArtifact{
		ExportID:     id,
		Mode:         ModeRaster,
		Filename:     ArtifactFilename(kind, now),
		Data:         pdf,
		PageCount:    pages,
		Bands:        bands,
		Warnings:     report.Failed,
		FailedAssets: report.FailedSources,
		CreatedAt:    now,
	}, nil
}

// normalize scales the bitmap to exactly boundary width times the
// oversampling factor so bitmap rows map onto CSS px without drift. It
// reports whether the bitmap was resized.
func (p *RasterExportPipeline) normalize(img image.Image) (image.Image, bool) {
	want := p.boundary.WidthPx * p.oversampling
	if img.Bounds().Dx() == want {
		return img, false
	}
	p.log.Debug("normalizing capture width", zap.Int("from", img.Bounds().Dx()), zap.Int("to", want))
	return imaging.Resize(img, want, 0, imaging.Lanczos), true
}

// snapResidue drops a remainder of at most bandTolerancePx below the last
// full page. Resizing rounds the bitmap height to whole rows, which can
// leave such a sliver where the surface ended exactly on a page break.
func snapResidue(heightPx, pageHeight float64) float64 {
	if heightPx <= pageHeight {
		return heightPx
	}
	r := math.Mod(heightPx, pageHeight)
	if r > 0 && r <= bandTolerancePx {
		return heightPx - r
	}
	return heightPx
}

// assemble plans bands over img and lays them out one per PDF page. The
// bitmap is embedded once and drawn on every page at the band's negative
// offset; the page box clips the rest. A nil img gives one empty page.
func (p *RasterExportPipeline) assemble(img image.Image, resized bool) ([]byte, []RasterBand, error) {
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: p.boundary.WidthPt(), Ht: p.boundary.HeightPt()},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreator("docpreview", true)

	var heightPx float64
	if img != nil && img.Bounds().Dx() > 0 {
		scale := float64(img.Bounds().Dx()) / float64(p.boundary.WidthPx)
		heightPx = float64(img.Bounds().Dy()) / scale
		if resized {
			heightPx = snapResidue(heightPx, float64(p.boundary.HeightPx))
		}
	}

	bands, err := PlanBands(heightPx, float64(p.boundary.HeightPx), p.legacy)
	if err != nil {
		return nil, nil, err
	}

	if len(bands) == 0 {
		doc.AddPage()
		return p.output(doc, bands)
	}

	opts, err := p.register(doc, img)
	if err != nil {
		return nil, nil, err
	}
	w, h := p.boundary.WidthPt(), heightPx*ptPerPx
	for _, b := range bands {
		doc.AddPage()
		doc.ImageOptions(surfaceImageName, 0, -b.SourceYOffsetPx*ptPerPx, w, h, false, opts, 0, "")
	}
	return p.output(doc, bands)
}

func (p *RasterExportPipeline) register(doc *fpdf.Fpdf, img image.Image) (fpdf.ImageOptions, error) {
	format, imageType := imaging.PNG, "PNG"
	if p.encoding == EncodeJPEG {
		format, imageType = imaging.JPEG, "JPG"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(p.jpegQuality)); err != nil {
		return fpdf.ImageOptions{}, fmt.Errorf("encoding bitmap: %w", err)
	}

	opts := fpdf.ImageOptions{ImageType: imageType, AllowNegativePosition: true}
	doc.RegisterImageOptionsReader(surfaceImageName, opts, &buf)
	if err := doc.Error(); err != nil {
		return fpdf.ImageOptions{}, fmt.Errorf("registering bitmap: %w", err)
	}
	return opts, nil
}

func (p *RasterExportPipeline) output(doc *fpdf.Fpdf, bands []RasterBand) ([]byte, []RasterBand, error) {
	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return nil, nil, fmt.Errorf("writing PDF: %w", err)
	}
	return out.Bytes(), bands, nil
}
