package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds raster export flags.
type pageFlags struct {
	oversampling int
	legacyBand   bool
	encoding     string
	jpegQuality  int
}

// assetFlags holds template and style selection.
type assetFlags struct {
	style     string // name or CSS file path
	template  string // template set name
	assetPath string // directory searched before the embedded assets
}

// documentFlags holds presentation defaults.
type documentFlags struct {
	lang string
	note string
}

// exportFlags holds all flags for the export and print commands.
type exportFlags struct {
	common   commonFlags
	output   string
	workers  int
	timeout  string
	page     pageFlags
	assets   assetFlags
	document documentFlags
}

// planFlags holds flags for the plan command.
type planFlags struct {
	common commonFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.IntVar(&f.oversampling, "oversampling", 0, "capture scale factor (1-4, default: 2)")
	fs.BoolVar(&f.legacyBand, "legacy-trailing-band", false, "emit a blank page when the surface is an exact page multiple")
	fs.StringVar(&f.encoding, "encoding", "", "embedded image encoding: png, jpeg")
	fs.IntVar(&f.jpegQuality, "jpeg-quality", 0, "JPEG quality (1-100, default: 92)")
}

func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.style, "style", "", "CSS style name or file path")
	fs.StringVar(&f.template, "template", "", "template set name")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.lang, "lang", "", "document language (default: en)")
	fs.StringVar(&f.note, "note", "", "footer note for documents without one")
}

// parseExportFlags parses export/print flags and returns positional args.
func parseExportFlags(name string, args []string, usage io.Writer) (*exportFlags, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &exportFlags{}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-document timeout (e.g., 30s, 2m)")

	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)
	addAssetFlags(fs, &f.assets)
	addDocumentFlags(fs, &f.document)

	fs.Usage = func() { printExportUsage(usage, name) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parsePlanFlags parses plan flags and returns positional args.
func parsePlanFlags(args []string, usage io.Writer) (*planFlags, []string, error) {
	fs := flag.NewFlagSet(cmdPlan, flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &planFlags{}

	addCommonFlags(fs, &f.common)
	fs.BoolVar(&f.json, "json", false, "output as JSON")

	fs.Usage = func() { printPlanUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	config string
	json   bool
}

func parseDoctorFlags(args []string, usage io.Writer) (*doctorFlags, error) {
	fs := flag.NewFlagSet(cmdDoctor, flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &doctorFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "config file to check")
	fs.BoolVar(&f.json, "json", false, "output as JSON")

	fs.Usage = func() { printDoctorUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
