package port

// Extractor turns a document file into plain text.
type Extractor interface {
	// Extract reads the file at path and returns its textual content.
	Extract(path string) (string, error)

	// SupportedExtensions returns the file extensions this extractor
	// handles, including the leading dot.
	SupportedExtensions() []string
}
