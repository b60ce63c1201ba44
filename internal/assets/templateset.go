package assets

import (
	"errors"
	"fmt"
	"io/fs"
)

// Default asset names.
const (
	DefaultTemplateSetName = "default"
	DefaultStyleName       = "default"
)

// TemplateSet holds the templates that compose one document layout.
type TemplateSet struct {
	Name     string
	Document string
	Header   string
	Footer   string
	Blocks   string
}

// Sources returns the set's templates in parse order.
func (ts *TemplateSet) Sources() []string {
	return []string{ts.Document, ts.Header, ts.Footer, ts.Blocks}
}

// templateFiles lists the files every set must provide.
var templateFiles = []string{"document.html", "header.html", "footer.html", "blocks.html"}

// readTemplateSet loads a set through read, which is given a file name
// relative to the set directory. Missing every file means the set does not
// exist; missing only some means it is incomplete.
func readTemplateSet(name string, read func(file string) ([]byte, error)) (*TemplateSet, error) {
	contents := make([]string, len(templateFiles))
	var missing []string

	for i, file := range templateFiles {
		data, err := read(file)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			missing = append(missing, file)
		case err != nil:
			return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, file, err)
		default:
			contents[i] = string(data)
		}
	}

	if len(missing) == len(templateFiles) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, missing[0])
	}

	return &TemplateSet{
		Name:     name,
		Document: contents[0],
		Header:   contents[1],
		Footer:   contents[2],
		Blocks:   contents[3],
	}, nil
}
