// Package i18n resolves user-facing strings for the TUI and CLI.
// English is the fallback language; Estonian is bundled because the
// ferry line it watches is Estonian.
package i18n

import (
	"embed"
	"encoding/json"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator resolves message ids for one locale.
type Translator struct {
	localizer *goi18n.Localizer
}

// NewTranslator builds a translator for the given BCP 47 tag, e.g.
// "en" or "et". Unknown tags fall back to English per message.
func NewTranslator(locale string) (*Translator, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, name := range []string{"locales/en.json", "locales/et.json"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, name); err != nil {
			return nil, err
		}
	}

	return &Translator{
		localizer: goi18n.NewLocalizer(bundle, locale, language.English.String()),
	}, nil
}

// T resolves a message id. Unknown ids come back verbatim so a missing
// translation never blanks out a label.
func (t *Translator) T(id string) string {
	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return id
	}
	return msg
}

// Tf resolves a message id with template data.
func (t *Translator) Tf(id string, data map[string]any) string {
	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return msg
}
