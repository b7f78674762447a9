package http

import (
	"errors"
	"net/http"
	"strings"

	"agencia/internal/core"
	"agencia/internal/locale"
)

// sanitizeInput removes control characters (except tab and newlines) and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// localeFor picks the display profile of a request: an explicit ?lang wins,
// then Accept-Language, then the server default.
func (s *Server) localeFor(r *http.Request) locale.Profile {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		return locale.Match(lang, s.locale)
	}
	return locale.Match(r.Header.Get("Accept-Language"), s.locale)
}

// isValidationError reports errors caused by user input.
func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidYear) ||
		errors.Is(err, core.ErrInvalidMonth) ||
		errors.Is(err, core.ErrInvalidAmount)
}

// validationMessage turns a validation error into text for the form.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidYear):
		return "Ano inválido"
	case errors.Is(err, core.ErrInvalidMonth):
		return "Mês inválido"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Valor inválido: " + err.Error()
	default:
		return "Dados inválidos"
	}
}
