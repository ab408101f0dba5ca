package i18n

import "testing"

func TestTranslator_DefaultAndPortuguese(t *testing.T) {
	// default is en
	if msg := T("required", nil); msg != "required" {
		t.Fatalf("expected english message, got %q", msg)
	}

	SetLanguage("pt")
	defer SetLanguage("en")
	if msg := T("invalid_code", nil); msg != "Código inválido" {
		t.Fatalf("expected portuguese message, got %q", msg)
	}
	if msg := T("conflict", map[string]string{"field": "Email"}); msg != "Email já cadastrado" {
		t.Fatalf("got %q", msg)
	}
}

func TestTranslator_UnknownCodeAndLanguage(t *testing.T) {
	if msg := For("xx").Message("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("got %q", msg)
	}
	if msg := For("xx").Message("too_short", map[string]string{"min": "6"}); msg != "must have at least 6 characters" {
		t.Fatalf("got %q", msg)
	}
}

func TestFormat_LeavesUnknownPlaceholders(t *testing.T) {
	if got := Format("{a} and {b}", map[string]string{"a": "x"}); got != "x and {b}" {
		t.Fatalf("got %q", got)
	}
}

func TestSetTranslator_NilRestoresDefault(t *testing.T) {
	SetTranslator(fixed("custom"))
	if got := T("required", nil); got != "custom" {
		t.Fatalf("got %q", got)
	}
	SetTranslator(nil)
	if got := T("required", nil); got != "required" {
		t.Fatalf("got %q", got)
	}
}

type fixed string

func (f fixed) Message(string, map[string]string) string { return string(f) }
