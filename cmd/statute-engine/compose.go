package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/statute-engine/internal/compose"
	"github.com/pdiddy/statute-engine/pkg/types"
)

const (
	defaultInputsDir     = "inputs"
	defaultCompositeName = "combined_input.json"
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Combine a law with related documents into a composite input",
	Long: `Compose loads a converted law plus optional decrees, resolutions, and
circulars, wraps them under a shared metadata envelope, and writes the
composite JSON to inputs/combined_input.json.

Metadata placeholders stay empty unless set explicitly; the output is
byte-stable across runs with the same inputs and flags.`,
	RunE: runCompose,
}

func init() {
	composeCmd.Flags().String("law", "", "converted law document (required)")
	composeCmd.Flags().StringSlice("decrees", nil, "related decree documents")
	composeCmd.Flags().StringSlice("resolutions", nil, "related resolution documents")
	composeCmd.Flags().StringSlice("circulars", nil, "related circular documents")
	composeCmd.Flags().StringP("output", "o", "", "output path (default <inputs-dir>/"+defaultCompositeName+")")
	composeCmd.Flags().String("inputs-dir", "", "directory for composite outputs (default inputs)")
	composeCmd.Flags().String("law-id", "", "law identifier for the metadata envelope")
	composeCmd.Flags().String("version-id", "", "version identifier for the metadata envelope")
	composeCmd.Flags().Bool("new-version", false, "generate a fresh version identifier")
	composeCmd.Flags().String("status", "", "status for the metadata envelope")
	composeCmd.Flags().String("last-updated", "", "last-updated stamp for the metadata envelope")

	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	lawPath, _ := cmd.Flags().GetString("law")
	if lawPath == "" {
		return fmt.Errorf("no law document selected: provide --law")
	}

	decrees, _ := cmd.Flags().GetStringSlice("decrees")
	resolutions, _ := cmd.Flags().GetStringSlice("resolutions")
	circulars, _ := cmd.Flags().GetStringSlice("circulars")

	groups := compose.Groups{
		Law:         lawPath,
		Decrees:     decrees,
		Resolutions: resolutions,
		Circulars:   circulars,
	}

	meta := types.CompositeMetadata{}
	meta.LawID, _ = cmd.Flags().GetString("law-id")
	meta.VersionID, _ = cmd.Flags().GetString("version-id")
	if newVersion, _ := cmd.Flags().GetBool("new-version"); newVersion {
		meta.VersionID = compose.NewVersionID()
	}
	meta.Status, _ = cmd.Flags().GetString("status")
	meta.LastUpdated, _ = cmd.Flags().GetString("last-updated")

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		inputsDir := configString(cmd, "inputs-dir", "compose.inputs_dir", defaultInputsDir)
		outPath = filepath.Join(inputsDir, defaultCompositeName)
	}

	return compose.Write(outPath, groups, meta, os.Stdout)
}
