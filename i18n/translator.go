package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional parameters to embed in the message; "{min}" in a
// template is replaced by data["min"].
type Translator interface {
	Message(code string, data map[string]string) string
}

var catalogs = map[string]map[string]string{
	"en": {
		"required":               "required",
		"invalid_type":           "invalid type",
		"too_short":              "must have at least {min} characters",
		"too_long":               "must have at most {max} characters",
		"too_small":              "must be at least {min}",
		"too_big":                "must be at most {max}",
		"pattern":                "invalid format",
		"invalid_format":         "invalid {format}",
		"invalid_enum":           "must be one of {options}",
		"mismatch":               "does not match {other}",
		"duplicate_key":          "duplicate key",
		"rejected":               "rejected",
		"conflict":               "{field} already registered",
		"invalid_code":           "invalid code",
		"dependency_unavailable": "service unavailable, try again",
	},
	"pt": {
		"required":               "Obrigatório",
		"invalid_type":           "Tipo inválido",
		"too_short":              "Deve ter no mínimo {min} caracteres",
		"too_long":               "Deve ter no máximo {max} caracteres",
		"too_small":              "Deve ser no mínimo {min}",
		"too_big":                "Deve ser no máximo {max}",
		"pattern":                "Formato inválido",
		"invalid_format":         "{format} inválido",
		"invalid_enum":           "Deve ser um de {options}",
		"mismatch":               "Não confere com {other}",
		"duplicate_key":          "Chave duplicada",
		"rejected":               "Recusado",
		"conflict":               "{field} já cadastrado",
		"invalid_code":           "Código inválido",
		"dependency_unavailable": "Serviço indisponível, tente novamente",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := catalogs[t.lang][code]
	if !ok {
		return code
	}
	return Format(tmpl, data)
}

// Format replaces every {key} in tmpl with data[key]. Unknown keys stay as-is.
func Format(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// Languages lists the built-in dictionary languages.
func Languages() []string { return []string{"en", "pt"} }

// SetLanguage switches the built-in Translator language ("en"/"pt").
// Unknown languages fall back to English.
func SetLanguage(lang string) {
	if _, ok := catalogs[lang]; !ok {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// For returns a dictionary Translator for lang without touching the global one.
func For(lang string) Translator {
	if _, ok := catalogs[lang]; !ok {
		lang = "en"
	}
	return dictTranslator{lang: lang}
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
