package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Abdul-Razack/docpreview"
	"github.com/Abdul-Razack/docpreview/internal/config"
	"github.com/Abdul-Razack/docpreview/internal/dateutil"
	"github.com/Abdul-Razack/docpreview/internal/yamlutil"
)

// Sentinel errors for input handling.
var (
	ErrNoInput          = errors.New("no input specified")
	ErrNoDocuments      = errors.New("no document files found")
	ErrReadInput        = errors.New("failed to read document file")
	ErrParseInput       = errors.New("failed to parse document file")
	ErrInvalidExtension = errors.New("file must have .yaml or .yml extension")
)

// documentFile is the YAML layout of one document:
//
//	kind: purchase-order
//	title: Purchase Order PO-1042
//	columns: [Part, Description, Qty]
//	records:
//	  - type: row
//	    cells: [BRK-220, Brake pad, "4"]
//	  - type: keyvalue
//	    title: Vendor
//	    fields: [{key: Name, value: Acme}]
//	  - type: file
//	    name: drawing.png
//	    source: ./drawing.png
type documentFile struct {
	Kind      string               `yaml:"kind"`
	Title     string               `yaml:"title"`
	Reference string               `yaml:"reference"`
	CreatedBy string               `yaml:"createdBy"`
	CreatedAt string               `yaml:"createdAt"`
	Note      string               `yaml:"note"`
	Columns   []string             `yaml:"columns"`
	Policy    *config.PolicyConfig `yaml:"policy"` // overrides the configured policy for this file
	Records   []recordFile         `yaml:"records"`
}

type recordFile struct {
	Type    string      `yaml:"type"`
	Cells   []string    `yaml:"cells"`
	Name    string      `yaml:"name"`
	Source  string      `yaml:"source"`
	Caption string      `yaml:"caption"`
	Title   string      `yaml:"title"`
	Fields  []fieldFile `yaml:"fields"`
}

type fieldFile struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// loadDocument reads and decodes one document file. Relative file sources
// resolve against the file's directory. Missing metadata falls back to cfg.
func loadDocument(path string, cfg *config.Config, now time.Time) (docpreview.Document, error) {
	var df documentFile
	if err := yamlutil.DecodeFile(path, &df); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
			return docpreview.Document{}, fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		return docpreview.Document{}, fmt.Errorf("%w: %s: %v", ErrParseInput, path, err)
	}

	records := make([]docpreview.Record, 0, len(df.Records))
	for i, r := range df.Records {
		rec, err := r.record()
		if err != nil {
			return docpreview.Document{}, fmt.Errorf("%s: record %d: %w", path, i+1, err)
		}
		records = append(records, rec)
	}

	pc := cfg.PolicyFor(df.Kind)
	if df.Policy != nil {
		pc = *df.Policy
	}
	policy, err := buildPolicy(pc)
	if err != nil {
		return docpreview.Document{}, fmt.Errorf("%s: %w", path, err)
	}

	createdAt := df.CreatedAt
	if createdAt == "" {
		createdAt = cfg.Document.CreatedAt
	}
	// Resolve "auto" once so every page of a batch shows the same stamp.
	if createdAt, err = dateutil.ResolveDate(createdAt, now); err != nil {
		return docpreview.Document{}, fmt.Errorf("%s: createdAt: %w", path, err)
	}

	doc := docpreview.Document{
		Kind:      df.Kind,
		Title:     df.Title,
		Reference: df.Reference,
		CreatedBy: df.CreatedBy,
		CreatedAt: createdAt,
		Note:      df.Note,
		Columns:   df.Columns,
		Records:   records,
		Policy:    policy,
		BaseDir:   filepath.Dir(path),
	}
	if err := doc.Validate(); err != nil {
		return docpreview.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func (r recordFile) record() (docpreview.Record, error) {
	switch docpreview.Kind(strings.ToLower(r.Type)) {
	case docpreview.KindRow:
		return docpreview.NewRow(r.Cells...), nil
	case docpreview.KindFile:
		return docpreview.NewFile(r.Name, r.Source, r.Caption), nil
	case docpreview.KindKeyValue:
		fields := make([]docpreview.Field, len(r.Fields))
		for i, f := range r.Fields {
			fields[i] = docpreview.Field{Key: f.Key, Value: f.Value}
		}
		return docpreview.NewKeyValue(r.Title, fields...), nil
	default:
		return docpreview.Record{}, fmt.Errorf("%w: %q (want row, file or keyvalue)", docpreview.ErrUnknownRecordKind, r.Type)
	}
}

// buildPolicy turns a configured policy into a CapacityPolicy.
func buildPolicy(pc config.PolicyConfig) (docpreview.CapacityPolicy, error) {
	switch strings.ToLower(pc.Mode) {
	case "fixed":
		return docpreview.Fixed(pc.PerPage)
	case "tiered", "":
		return docpreview.Tiered(pc.First, pc.Rest, pc.MinSplitRemainder)
	default:
		return docpreview.CapacityPolicy{}, fmt.Errorf("%w: policy mode %q", config.ErrInvalidValue, pc.Mode)
	}
}

// discoverDocuments expands the arguments into document files. Directories
// are walked for .yaml and .yml files; explicit files must carry one of
// those extensions.
func discoverDocuments(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, ErrNoInput
	}

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
		}

		if !info.IsDir() {
			if !looksLikeDocument(arg) {
				return nil, fmt.Errorf("%w: %s", ErrInvalidExtension, arg)
			}
			files = append(files, arg)
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && looksLikeDocument(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("%w in %s", ErrNoDocuments, arg)
		}
		files = append(files, found...)
	}
	return files, nil
}
