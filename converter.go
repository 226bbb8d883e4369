package lexicon

// Converter converts extracted HTML into Markdown text suitable for a
// model prompt.
type Converter interface {
	Convert(html string) (string, error)
}
