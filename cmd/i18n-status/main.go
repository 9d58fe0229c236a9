// Package main reports translation completeness of the embedded catalogs.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/config"
	i18ncatalog "github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/i18n/catalog"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/tools/i18nstatus"
)

func main() {
	var baseLocale string
	var out string
	var format string
	var strict bool

	flag.StringVar(&baseLocale, "base-locale", i18ncatalog.BaseLocale, "base locale used as translation source of truth")
	flag.StringVar(&out, "out", "-", "output path, - for stdout")
	flag.StringVar(&format, "format", "markdown", "output format: markdown or json")
	flag.BoolVar(&strict, "strict", false, "exit non-zero when any translation is missing")
	flag.Parse()

	bundle, err := i18ncatalog.LoadEmbedded()
	if err != nil {
		config.Exitf("load i18n catalogs: %v", err)
	}
	if !bundle.HasLocale(baseLocale) {
		config.Exitf("base locale %q is missing from catalogs", baseLocale)
	}
	rep := i18nstatus.Build(bundle, baseLocale)

	var w io.Writer = os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			config.Exitf("create %s: %v", out, err)
		}
		defer f.Close()
		w = f
	}

	switch strings.ToLower(format) {
	case "json":
		err = i18nstatus.WriteJSON(w, rep)
	case "markdown", "md":
		err = i18nstatus.WriteMarkdown(w, rep)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		config.Exitf("write report: %v", err)
	}

	if missing := rep.Incomplete(); strict && len(missing) > 0 {
		config.Exitf("%d missing translations:\n%s", len(missing), strings.Join(missing, "\n"))
	}
}
