package assets

// Loader loads styles and template sets by name.
type Loader interface {
	// LoadStyle loads a CSS style by name, without the .css extension.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet loads every file of the named set. A set missing
	// some but not all files fails with ErrIncompleteTemplateSet.
	LoadTemplateSet(name string) (*TemplateSet, error)
}
