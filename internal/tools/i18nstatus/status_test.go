package i18nstatus

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	i18ncatalog "github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/i18n/catalog"
)

func testBundle(t *testing.T) *i18ncatalog.Bundle {
	t.Helper()
	fsys := fstest.MapFS{
		"locales/en-US/luck.yaml": {Data: []byte(`locale: "en-US"
namespace: "luck"
messages:
  "luck.move.fudge": "Fudge"
  "luck.move.feint": "Feint"
`)},
		"locales/en-US/errors.yaml": {Data: []byte(`locale: "en-US"
namespace: "errors"
messages:
  "error.luck.insufficient": "Not enough luck"
`)},
		"locales/pt-BR/luck.yaml": {Data: []byte(`locale: "pt-BR"
namespace: "luck"
messages:
  "luck.move.fudge": "Trapaça"
  "luck.move.extra": "Extra"
`)},
	}
	bundle, err := i18ncatalog.LoadFromFS(fsys)
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}
	return bundle
}

func TestBuild(t *testing.T) {
	rep := Build(testBundle(t), "en-US")
	if len(rep.Locales) != 2 {
		t.Fatalf("locales = %d, want 2", len(rep.Locales))
	}
	pt := rep.Locales[1]
	if pt.Locale != "pt-BR" {
		t.Fatalf("locale = %q, want pt-BR", pt.Locale)
	}
	if pt.Translated != 1 || pt.BaseKeys != 3 {
		t.Fatalf("translated = %d/%d, want 1/3", pt.Translated, pt.BaseKeys)
	}
	if pt.Completion != 33.3 {
		t.Fatalf("completion = %v, want 33.3", pt.Completion)
	}
	wantMissing := []string{"error.luck.insufficient", "luck.move.feint"}
	if !reflect.DeepEqual(pt.MissingKeys, wantMissing) {
		t.Fatalf("missing = %v, want %v", pt.MissingKeys, wantMissing)
	}
	if !reflect.DeepEqual(pt.ExtraKeys, []string{"luck.move.extra"}) {
		t.Fatalf("extra = %v, want [luck.move.extra]", pt.ExtraKeys)
	}
	if len(pt.Namespaces) != 2 || pt.Namespaces[0].Namespace != "errors" || pt.Namespaces[0].Missing != 1 {
		t.Fatalf("namespaces = %+v", pt.Namespaces)
	}
	if got := rep.Incomplete(); len(got) != 2 || got[0] != "pt-BR: error.luck.insufficient" {
		t.Fatalf("incomplete = %v", got)
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, Build(testBundle(t), "en-US")); err != nil {
		t.Fatalf("write markdown: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"| `pt-BR` | 3 | 1 | 2 | 1 | 33.3% |", "### Missing Keys", "- `luck.move.extra`"} {
		if !strings.Contains(out, want) {
			t.Fatalf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, Build(testBundle(t), "en-US")); err != nil {
		t.Fatalf("write json: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.BaseLocale != "en-US" || len(decoded.Locales) != 2 {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestEmbeddedBaseLocaleIsComplete(t *testing.T) {
	rep := Build(i18ncatalog.Default(), i18ncatalog.BaseLocale)
	for _, l := range rep.Locales {
		if l.Locale != i18ncatalog.BaseLocale {
			continue
		}
		if l.Completion != 100 || len(l.ExtraKeys) != 0 {
			t.Fatalf("base locale status = %+v", l)
		}
		return
	}
	t.Fatal("base locale missing from report")
}
