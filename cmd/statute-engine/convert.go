package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/statute-engine/internal/container"
	"github.com/pdiddy/statute-engine/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert statute text files to structured JSON",
	Long: `Convert parses plain-text statutes into the chapter/article/clause
structure and writes one JSON document per input to documents/json/.
Metadata sidecars from documents/meta/ are merged when present. PDF
inputs are piped through the pdftotext container image (docker or
podman) first.

Outputs newer than their input are skipped; use --force to reconvert.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().Bool("batch", false, "process every .txt file under documents/txt/")
	convertCmd.Flags().Bool("force", false, "reconvert files whose output is up to date")
	convertCmd.Flags().String("documents-dir", "", "base directory for documents (default documents)")
	convertCmd.Flags().String("out-dir", "", "output directory (default <documents-dir>/json)")
	convertCmd.Flags().String("metadata", "", "run-wide metadata JSON for documents without a sidecar")
	convertCmd.Flags().String("pdf-image", "", "container image for PDF text extraction (default "+convert.DefaultPDFImage+")")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	batch, _ := cmd.Flags().GetBool("batch")
	if len(args) == 0 && !batch {
		return fmt.Errorf("provide one or more input files or use --batch")
	}

	documentsDir := configString(cmd, "documents-dir", "convert.documents_dir", defaultDocumentsDir)
	outDir, _ := cmd.Flags().GetString("out-dir")
	if outDir == "" {
		outDir = filepath.Join(documentsDir, "json")
	}
	metadataPath, _ := cmd.Flags().GetString("metadata")
	force, _ := cmd.Flags().GetBool("force")

	opts := convert.Options{
		OutDir:       outDir,
		MetaDir:      filepath.Join(documentsDir, "meta"),
		MetadataPath: metadataPath,
		Force:        force,
	}

	src := convert.Router{Plain: convert.FileSource{}}
	if pdf, err := pdfSource(cmd); err == nil {
		src.PDF = pdf
	} else if needsPDF(args) {
		return err
	}

	var result convert.BatchResult
	if batch {
		var err error
		result, err = convert.ConvertDir(src, filepath.Join(documentsDir, "txt"), opts, os.Stdout)
		if err != nil {
			return err
		}
	} else {
		result = convert.ConvertBatch(src, args, opts, os.Stdout)
	}

	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}

// pdfSource builds the container-backed PDF text source. Fails when no
// container runtime or pdftotext image is available.
func pdfSource(cmd *cobra.Command) (convert.Source, error) {
	rt, err := container.DetectRuntime()
	if err != nil {
		return nil, err
	}
	image := configString(cmd, "pdf-image", "convert.pdf_image", convert.DefaultPDFImage)
	return convert.NewPDFSource(rt, image)
}

// needsPDF reports whether any of the explicit inputs is a PDF file.
func needsPDF(paths []string) bool {
	for _, p := range paths {
		if strings.EqualFold(filepath.Ext(p), ".pdf") {
			return true
		}
	}
	return false
}
