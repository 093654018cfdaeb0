package main

import (
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"typster/internal/fontcache"
	"typster/internal/fonts"
	"typster/internal/packages"
	"typster/internal/trace"
)

const (
	envFontPaths        = "TYPST_FONT_PATHS"
	envPackagePath      = "TYPST_PACKAGE_PATH"
	envPackageCachePath = "TYPST_PACKAGE_CACHE_PATH"
)

// settings are the persistent flags with environment fallbacks applied.
type settings struct {
	fontPaths        []string
	noSystemFonts    bool
	fontIndex        string
	packagePath      string
	packageCachePath string
	color            bool
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	flags := cmd.Root().PersistentFlags()
	var s settings
	var err error

	if s.fontPaths, err = flags.GetStringArray("font-path"); err != nil {
		return s, err
	}
	if !flags.Changed("font-path") {
		s.fontPaths = splitPathList(os.Getenv(envFontPaths))
	}
	if s.noSystemFonts, err = flags.GetBool("no-system-fonts"); err != nil {
		return s, err
	}
	if s.fontIndex, err = flags.GetString("font-index"); err != nil {
		return s, err
	}
	if s.packagePath, err = flags.GetString("package-path"); err != nil {
		return s, err
	}
	if s.packagePath == "" {
		s.packagePath = os.Getenv(envPackagePath)
	}
	if s.packageCachePath, err = flags.GetString("package-cache-path"); err != nil {
		return s, err
	}
	if s.packageCachePath == "" {
		s.packageCachePath = os.Getenv(envPackageCachePath)
	}

	colorFlag, err := flags.GetString("color")
	if err != nil {
		return s, err
	}
	s.color = colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
	color.NoColor = !s.color
	return s, nil
}

func splitPathList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range filepath.SplitList(v) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// openFontIndex opens the index named by --font-index, or returns nil.
func (s settings) openFontIndex() (*fontcache.Index, error) {
	switch s.fontIndex {
	case "":
		return nil, nil
	case "default":
		path, err := fontcache.DefaultPath("typster")
		if err != nil {
			return nil, err
		}
		return fontcache.Open(path)
	}
	return fontcache.Open(s.fontIndex)
}

// searchFonts builds the catalog and persists the font index if one is used.
func (s settings) searchFonts(cmd *cobra.Command) (*fonts.Catalog, error) {
	index, err := s.openFontIndex()
	if err != nil {
		return nil, err
	}
	tracer := trace.FromContext(cmd.Context())
	searcher := fonts.NewSearcher(fonts.Options{Index: index, Tracer: tracer})
	span := trace.Begin(tracer, trace.ScopePass, "font_search", 0)
	for _, p := range s.fontPaths {
		searcher.SearchPath(p)
	}
	if !s.noSystemFonts {
		for _, dir := range fonts.SystemDirs() {
			searcher.SearchDir(dir)
		}
	}
	searcher.SearchEmbedded(fonts.DefaultEmbedded())
	catalog := searcher.Catalog()
	span.End("")

	if index != nil {
		index.Prune(searcher.Scanned())
		if err := index.Save(); err != nil {
			trace.Point(tracer, trace.ScopePass, "font_index_save", err.Error())
		}
	}
	return catalog, nil
}

func (s settings) storage(cmd *cobra.Command) *packages.Storage {
	return packages.NewStorage(packages.Options{
		DataDir:  s.packagePath,
		CacheDir: s.packageCachePath,
		Tracer:   trace.FromContext(cmd.Context()),
	})
}
