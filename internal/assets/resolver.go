package assets

import "errors"

// Resolver tries a custom loader first and falls back to the embedded
// assets when the custom directory does not provide the asset.
type Resolver struct {
	custom   Loader
	embedded *EmbeddedLoader
}

// NewResolver uses only embedded assets when customBasePath is empty.
func NewResolver(customBasePath string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}
	if customBasePath == "" {
		return r, nil
	}
	fsLoader, err := NewFilesystemLoader(customBasePath)
	if err != nil {
		return nil, err
	}
	r.custom = fsLoader
	return r, nil
}

func (r *Resolver) LoadStyle(name string) (string, error) {
	return withFallback(r, func(l Loader) (string, error) { return l.LoadStyle(name) })
}

func (r *Resolver) LoadTemplateSet(name string) (*TemplateSet, error) {
	return withFallback(r, func(l Loader) (*TemplateSet, error) { return l.LoadTemplateSet(name) })
}

// Available lists the embedded template sets for hints.
func (r *Resolver) Available() []string {
	return r.embedded.TemplateSets()
}

func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

// withFallback only falls back on not-found errors. Validation and I/O
// errors from the custom loader are returned as is.
func withFallback[T any](r *Resolver, load func(Loader) (T, error)) (T, error) {
	if r.custom == nil {
		return load(r.embedded)
	}
	v, err := load(r.custom)
	if err == nil || !isNotFound(err) {
		return v, err
	}
	return load(r.embedded)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateSetNotFound)
}

var _ Loader = (*Resolver)(nil)
