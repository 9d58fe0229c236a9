// Package i18nstatus reports how complete each locale catalog is against
// the base locale.
package i18nstatus

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	i18ncatalog "github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/i18n/catalog"
)

// Report is the status of every locale.
type Report struct {
	BaseLocale string         `json:"base_locale"`
	Locales    []LocaleStatus `json:"locales"`
}

// LocaleStatus counts one locale's keys against the base locale.
type LocaleStatus struct {
	Locale      string            `json:"locale"`
	BaseKeys    int               `json:"base_keys"`
	Translated  int               `json:"translated"`
	Completion  float64           `json:"completion"`
	Namespaces  []NamespaceStatus `json:"namespaces"`
	MissingKeys []string          `json:"missing_keys"`
	ExtraKeys   []string          `json:"extra_keys"`
}

// NamespaceStatus counts one namespace, such as "luck" or "errors".
type NamespaceStatus struct {
	Namespace  string  `json:"namespace"`
	BaseKeys   int     `json:"base_keys"`
	Translated int     `json:"translated"`
	Missing    int     `json:"missing"`
	Completion float64 `json:"completion"`
}

// Build compares every locale in bundle with baseLocale.
func Build(bundle *i18ncatalog.Bundle, baseLocale string) Report {
	base := bundle.LocaleMessages(baseLocale)
	rep := Report{BaseLocale: baseLocale}
	for _, locale := range bundle.Locales() {
		messages := bundle.LocaleMessages(locale)
		missing := difference(base, messages)
		status := LocaleStatus{
			Locale:      locale,
			BaseKeys:    len(base),
			Translated:  len(base) - len(missing),
			Completion:  percent(len(base)-len(missing), len(base)),
			MissingKeys: missing,
			ExtraKeys:   difference(messages, base),
		}
		for _, namespace := range namespaces(bundle, baseLocale, locale) {
			baseNS := bundle.NamespaceMessages(baseLocale, namespace)
			nsMissing := difference(baseNS, bundle.NamespaceMessages(locale, namespace))
			status.Namespaces = append(status.Namespaces, NamespaceStatus{
				Namespace:  namespace,
				BaseKeys:   len(baseNS),
				Translated: len(baseNS) - len(nsMissing),
				Missing:    len(nsMissing),
				Completion: percent(len(baseNS)-len(nsMissing), len(baseNS)),
			})
		}
		rep.Locales = append(rep.Locales, status)
	}
	return rep
}

// Incomplete lists "locale: key" for every missing translation.
func (r Report) Incomplete() []string {
	var out []string
	for _, locale := range r.Locales {
		for _, key := range locale.MissingKeys {
			out = append(out, locale.Locale+": "+key)
		}
	}
	return out
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteMarkdown writes summary tables and missing or extra keys.
func WriteMarkdown(w io.Writer, rep Report) error {
	var b strings.Builder
	b.WriteString("# I18n Status\n\n")
	fmt.Fprintf(&b, "Base locale: `%s`.\n\n", rep.BaseLocale)
	b.WriteString("| Locale | Base Keys | Translated | Missing | Extra | Completion |\n")
	b.WriteString("| --- | ---: | ---: | ---: | ---: | ---: |\n")
	for _, l := range rep.Locales {
		fmt.Fprintf(&b, "| `%s` | %d | %d | %d | %d | %.1f%% |\n",
			l.Locale, l.BaseKeys, l.Translated, len(l.MissingKeys), len(l.ExtraKeys), l.Completion)
	}

	for _, l := range rep.Locales {
		fmt.Fprintf(&b, "\n## `%s`\n\n", l.Locale)
		b.WriteString("| Namespace | Base Keys | Translated | Missing | Completion |\n")
		b.WriteString("| --- | ---: | ---: | ---: | ---: |\n")
		for _, ns := range l.Namespaces {
			fmt.Fprintf(&b, "| `%s` | %d | %d | %d | %.1f%% |\n",
				ns.Namespace, ns.BaseKeys, ns.Translated, ns.Missing, ns.Completion)
		}
		writeKeys(&b, "Missing Keys", l.MissingKeys)
		writeKeys(&b, "Extra Keys", l.ExtraKeys)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeKeys(b *strings.Builder, title string, keys []string) {
	if len(keys) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", title)
	for _, key := range keys {
		fmt.Fprintf(b, "- `%s`\n", key)
	}
}

func namespaces(bundle *i18ncatalog.Bundle, locales ...string) []string {
	set := map[string]struct{}{}
	for _, locale := range locales {
		for _, ns := range bundle.Namespaces(locale) {
			set[ns] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for ns := range set {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// difference returns the keys of a that b lacks, sorted.
func difference(a, b map[string]string) []string {
	out := make([]string, 0)
	for key := range a {
		if _, ok := b[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func percent(numerator, denominator int) float64 {
	if denominator <= 0 {
		return 100
	}
	value := float64(numerator) * 100 / float64(denominator)
	return math.Round(value*10) / 10
}
