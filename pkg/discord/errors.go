package discord

import (
	"moevius/internal/domain"
	"moevius/internal/ports/output"
)

const genericErrorKey = "errors.generic"

// DomainErrorMessage resolves err to a user-facing message through the
// "errors.<code>" catalog entries. Errors without a domain code get the
// generic message.
func DomainErrorMessage(tr output.Translator, locale string, err error) string {
	if err == nil {
		return ""
	}
	code := domain.Code(err)
	if code == "" {
		return tr.T(locale, genericErrorKey, nil)
	}
	key := "errors." + code
	if msg := tr.T(locale, key, nil); msg != key {
		return msg
	}
	return tr.T(locale, genericErrorKey, nil)
}
