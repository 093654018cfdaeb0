package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"typster/internal/diag"
	"typster/internal/observ"
	"typster/internal/source"
	"typster/internal/trace"
	"typster/internal/world"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	pathColor    = color.New(color.FgBlue)
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <input>",
	Short: "Resolve the inputs of a document and report problems",
	Long: `Resolve builds the world for input, reads the main file and every --file
identifier, then prints the resolved dependencies and any diagnostics.
Use "-" to read the main file from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: resolveExecution,
}

func init() {
	resolveCmd.Flags().String("root", "", "project root (default: directory of input)")
	resolveCmd.Flags().StringArray("input", nil, "document input as key=value (repeatable)")
	resolveCmd.Flags().StringArray("file", nil, "extra file to resolve: /path or @ns/name:version/path (repeatable)")
	resolveCmd.Flags().Bool("timings", false, "show timing information")
	resolveCmd.Flags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
}

func resolveExecution(cmd *cobra.Command, args []string) error {
	root, err := cmd.Flags().GetString("root")
	if err != nil {
		return err
	}
	inputArgs, err := cmd.Flags().GetStringArray("input")
	if err != nil {
		return err
	}
	fileArgs, err := cmd.Flags().GetStringArray("file")
	if err != nil {
		return err
	}
	timings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Flags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	inputs, err := parseInputs(inputArgs)
	if err != nil {
		return err
	}
	ids := make([]source.FileID, 0, len(fileArgs))
	for _, arg := range fileArgs {
		id, err := parseFileArg(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	tracer := trace.FromContext(cmd.Context())
	timer := observ.NewTimer()
	var w *world.SystemWorld
	_, err = timer.Measure("world", func() error {
		catalog, err := s.searchFonts(cmd)
		if err != nil {
			return err
		}
		w, err = world.New(world.Options{
			Input:    args[0],
			Root:     root,
			Inputs:   inputs,
			Fonts:    catalog,
			Packages: s.storage(cmd),
			Tracer:   tracer,
		})
		return err
	})
	if err != nil {
		dumpRing(cmd, tracer)
		return err
	}

	bag := diag.NewBag(maxDiagnostics)
	timer.Measure("resolve", func() error {
		if _, err := w.Main(); err != nil {
			bag.Add(diag.FileDiagnostic(w.MainID(), err))
		}
		for _, id := range ids {
			if _, err := w.File(id); err != nil {
				bag.Add(diag.FileDiagnostic(id, err))
			}
		}
		return nil
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "root: %s\nmain: %s\nfonts: %d faces\n", pathColor.Sprint(w.Root()), w.MainID(), w.Book().Len())
	for _, dep := range w.Dependencies() {
		fmt.Fprintf(out, "  %s\n", pathColor.Sprint(dep))
	}

	bag.Dedup()
	bag.Sort()
	printDiagnostics(cmd.ErrOrStderr(), bag)
	if timings {
		fmt.Fprint(out, timer.Summary())
	}
	if bag.HasErrors() {
		dumpRing(cmd, tracer)
		return fmt.Errorf("%d file(s) could not be resolved", bag.Len())
	}
	return nil
}

func printDiagnostics(out io.Writer, bag *diag.Bag) {
	for _, d := range bag.Items() {
		sev := d.Severity.String()
		switch d.Severity {
		case diag.SevError:
			sev = errorColor.Sprint(sev)
		case diag.SevWarning:
			sev = warningColor.Sprint(sev)
		}
		fmt.Fprintf(out, "%s[%s]: %s: %s\n", sev, d.Code.ID(), d.File, d.Message)
	}
}

func parseInputs(args []string) (map[string]string, error) {
	inputs := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("input %q must be key=value", arg)
		}
		inputs[k] = v
	}
	return inputs, nil
}

var errFileArg = errors.New("package file must look like @namespace/name:version/path")

// parseFileArg parses "/path" or "@ns/name:version/path".
func parseFileArg(arg string) (source.FileID, error) {
	if !strings.HasPrefix(arg, "@") {
		return source.NewFileID(source.PackageSpec{}, source.NewVirtualPath(arg)), nil
	}
	colon := strings.IndexByte(arg, ':')
	if colon < 0 {
		return source.FileID{}, errFileArg
	}
	slash := strings.IndexByte(arg[colon:], '/')
	if slash < 0 {
		return source.FileID{}, errFileArg
	}
	spec, err := source.ParsePackageSpec(arg[:colon+slash])
	if err != nil {
		return source.FileID{}, err
	}
	return source.NewFileID(spec, source.NewVirtualPath(arg[colon+slash:])), nil
}
