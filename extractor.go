package lexicon

// ExtractResult is the readable part of a content item's landing page.
type ExtractResult struct {
	Title string

	// Description is the page's meta description, if any.
	Description string

	// ContentHTML is the main content with navigation and boilerplate removed.
	ContentHTML string
}

// Extractor pulls the main content out of a landing page.
// Returns ENOTFOUND when the page has no recognizable main content.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}
