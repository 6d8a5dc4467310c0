package i18n

import (
	"embed"
	"log/slog"
	"maps"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"moevius/internal/lib/logger/sl"
	"moevius/internal/ports/output"
)

//go:embed active.*.toml
var localeFS embed.FS

var localeFiles = []string{"active.de.toml", "active.en.toml"}

var _ output.Translator = (*Translator)(nil)

// Translator is a thin wrapper around go-i18n's Bundle/Localizer.
type Translator struct {
	log             *slog.Logger
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
}

// NewTranslator builds a Translator from the embedded active.*.toml files
// using defaultLocale (e.g. "de") as fallback language.
func NewTranslator(defaultLocale string, log *slog.Logger) *Translator {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		log.Warn("i18n: unknown default locale, using de", slog.String("locale", defaultLocale))
		tag = language.German
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			log.Error("i18n: failed to load message file", slog.String("file", file), sl.Err(err))
		}
	}

	return &Translator{
		log:             log,
		bundle:          bundle,
		defaultLanguage: tag,
	}
}

// T renders the message identified by key for the given locale.
// If the key/locale is not found, it falls back to the default locale,
// then finally to the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}
	return t.localize(locale, &i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
}

func (t *Translator) Plural(locale, key string, count int, data map[string]any) string {
	if key == "" {
		return ""
	}
	withCount := make(map[string]any, len(data)+1)
	maps.Copy(withCount, data)
	withCount["Count"] = count
	return t.localize(locale, &i18n.LocalizeConfig{
		MessageID:    key,
		PluralCount:  count,
		TemplateData: withCount,
	})
}

func (t *Translator) localize(locale string, cfg *i18n.LocalizeConfig) string {
	languages := make([]string, 0, 2)
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())

	msg, err := i18n.NewLocalizer(t.bundle, languages...).Localize(cfg)
	if err != nil {
		t.log.Warn("i18n: localize failed",
			slog.String("key", cfg.MessageID),
			slog.Any("locales", languages),
			sl.Err(err),
		)
		return cfg.MessageID
	}
	return msg
}
