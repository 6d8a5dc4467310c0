package output

// Translator renders user-facing text. An empty locale selects the
// configured default; unknown keys render as the key itself.
type Translator interface {
	T(locale, key string, data map[string]any) string
	// Plural picks the plural form for count and exposes it to the
	// template as .Count.
	Plural(locale, key string, count int, data map[string]any) string
}
