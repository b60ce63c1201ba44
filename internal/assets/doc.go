// Package assets provides the HTML templates and CSS used to compose
// preview documents.
//
// # Loader Architecture
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in sets compiled in with go:embed
//	    ├── FilesystemLoader  - custom sets from a directory on disk
//	    └── Resolver          - custom first, embedded fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css
//	└── templates/
//	    └── {name}/
//	        ├── document.html   # page shell, one <section> per page
//	        ├── header.html     # repeated on every page
//	        ├── footer.html     # repeated on every page
//	        └── blocks.html     # table, file and key-value record blocks
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
