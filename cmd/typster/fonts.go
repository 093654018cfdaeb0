package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"typster/internal/fonts"
)

var (
	familyColor  = color.New(color.FgCyan, color.Bold)
	variantColor = color.New(color.Faint)
)

var fontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "List the font families in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		showVariants, err := cmd.Flags().GetBool("variants")
		if err != nil {
			return err
		}
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		catalog, err := s.searchFonts(cmd)
		if err != nil {
			return err
		}

		families := fonts.ListFonts(catalog.Book)
		switch strings.ToLower(format) {
		case "json":
			return renderFontsJSON(cmd.OutOrStdout(), families)
		case "pretty":
			renderFontsPretty(cmd.OutOrStdout(), families, showVariants)
			return nil
		}
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	},
}

func init() {
	fontsCmd.Flags().Bool("variants", false, "also list style variants of every family")
	fontsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func renderFontsPretty(out io.Writer, families []fonts.Family, showVariants bool) {
	for _, fam := range families {
		fmt.Fprintln(out, familyColor.Sprint(fam.Name))
		if !showVariants {
			continue
		}
		for _, v := range fam.Variants {
			fmt.Fprintf(out, "- %s\n", variantColor.Sprintf("Style: %s, Weight: %s, Stretch: %s", v.Style, v.Weight, v.Stretch))
		}
	}
}

type fontVariantPayload struct {
	Style   string `json:"style"`
	Weight  uint16 `json:"weight"`
	Stretch string `json:"stretch"`
}

type fontFamilyPayload struct {
	Name     string               `json:"name"`
	Variants []fontVariantPayload `json:"variants"`
}

func renderFontsJSON(out io.Writer, families []fonts.Family) error {
	payload := make([]fontFamilyPayload, 0, len(families))
	for _, fam := range families {
		p := fontFamilyPayload{Name: fam.Name, Variants: make([]fontVariantPayload, 0, len(fam.Variants))}
		for _, v := range fam.Variants {
			p.Variants = append(p.Variants, fontVariantPayload{
				Style:   v.Style.String(),
				Weight:  uint16(v.Weight),
				Stretch: v.Stretch.String(),
			})
		}
		payload = append(payload, p)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

var exportFontsCmd = &cobra.Command{
	Use:   "export-fonts <dir>",
	Short: "Write the embedded fonts into a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadSettings(cmd); err != nil {
			return err
		}
		paths, err := fonts.ExportFonts(args[0], fonts.DefaultEmbedded())
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}
