package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	if !bundle.HasLocale(BaseLocale) {
		t.Fatalf("expected base locale %s", BaseLocale)
	}
	if !bundle.HasLocale("pt-BR") {
		t.Fatalf("expected locale pt-BR")
	}
	if got := len(bundle.NamespaceMessages("en-US", "luck")); got == 0 {
		t.Fatalf("expected en-US luck namespace messages")
	}
	if got := len(bundle.NamespaceMessages("en-US", "errors")); got == 0 {
		t.Fatalf("expected en-US errors namespace messages")
	}
}

func TestLoadFromFSRejectsLocaleMismatch(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/luck.yaml"), `locale: "pt-BR"
namespace: "luck"
messages:
  "a.key": "a"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected locale mismatch error")
	}
}

func TestLoadFromFSRejectsDuplicateKeysAcrossNamespaces(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/errors.yaml"), `locale: "en-US"
namespace: "errors"
messages:
  "a.key": "a"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/luck.yaml"), `locale: "en-US"
namespace: "luck"
messages:
  "a.key": "b"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/pt-BR/luck.yaml"), `locale: "pt-BR"
namespace: "luck"
messages:
  "a.key": "a"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected missing base locale error")
	}
}

func TestNamespaceMessagesWithFallback(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	resolved, messages := bundle.NamespaceMessagesWithFallback("fr-FR", "errors")
	if resolved != "en-US" {
		t.Fatalf("resolved locale = %q, want en-US", resolved)
	}
	if len(messages) == 0 {
		t.Fatal("expected fallback errors namespace messages")
	}

	resolved, messages = bundle.NamespaceMessagesWithFallback("pt-BR", "errors")
	if resolved != "pt-BR" {
		t.Fatalf("resolved locale = %q, want pt-BR", resolved)
	}
	if messages["LUCK_INVALID_MOVE"] != "Movimento de sorte inválido" {
		t.Fatalf("pt-BR message = %q", messages["LUCK_INVALID_MOVE"])
	}
	if messages["DICE_MISSING"] == "" {
		t.Fatal("expected base-locale message to fill missing pt-BR key")
	}
}

func TestPrinterRendersRegisteredMessages(t *testing.T) {
	p := Default().Printer("pt-BR")
	if got := p.Sprintf("luck.move.feint"); got != "Finta" {
		t.Fatalf("pt-BR feint = %q, want Finta", got)
	}
	if got := p.Sprintf("luck.move.mulligan"); got != "Mulligan" {
		t.Fatalf("pt-BR mulligan fallback = %q, want Mulligan", got)
	}
	if got := Default().Printer("").Sprintf("luck.effect.advantage", "Fudge", 2); got != "Fudge raises Advantage to 2." {
		t.Fatalf("en-US effect = %q", got)
	}
}

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}
