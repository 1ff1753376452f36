package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pagecarve/pagecarve/internal/config"
	"github.com/pagecarve/pagecarve/internal/extract"
	"github.com/pagecarve/pagecarve/internal/pdf"
)

// extractCmd represents the extract command.
var extractCmd = &cobra.Command{
	Use:   "extract [file...]",
	Short: "Extract page rasters, text and isolated images from PDFs",
	Long: `Extract visual content from PDF files.

For every selected page this writes the full-page raster, the page text,
and one standalone PNG per embedded or drawn graphic, each clipped to its
effective clip region with a transparent background.

Examples:
  pagecarve extract document.pdf
  pagecarve extract document.pdf --pages 1-5 --output-dir out
  pagecarve extract *.pdf --format json --output summary.json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("pages", "", "page range to process (e.g., '1-5', '1,3,5')")
	extractCmd.Flags().StringP("output-dir", "d", "", "directory for per-page artifacts (default from config)")
	extractCmd.Flags().Float64("scale", 0, "render scale in pixels per point (0 = config default)")
	extractCmd.Flags().Float64("min-dim", -1, "minimum graphic dimension in points (-1 = config default)")
	extractCmd.Flags().StringP("format", "f", "", "summary format (text, json)")
	extractCmd.Flags().StringP("output", "o", "", "summary file (default: stdout)")
	extractCmd.Flags().BoolP("quiet", "q", false, "suppress the progress bar")
}

// extractConfig holds the resolved settings for one extract run.
type extractConfig struct {
	pages      string
	outputDir  string
	scale      float64
	minDim     float64
	coverage   float64
	format     string
	outputFile string
	quiet      bool
}

// resolveExtractConfig merges the central configuration with command-line
// flags; flags win when set.
func resolveExtractConfig(centralCfg *config.Config, cmd *cobra.Command) (*extractConfig, error) {
	cfg := &extractConfig{
		pages:      centralCfg.Extract.Pages,
		outputDir:  centralCfg.Output.Dir,
		scale:      centralCfg.Extract.Scale,
		minDim:     centralCfg.Extract.MinVectorDimension,
		coverage:   centralCfg.Extract.PageCoverage,
		format:     centralCfg.Output.Format,
		outputFile: centralCfg.Output.File,
	}

	if cmd.Flags().Changed("pages") {
		cfg.pages, _ = cmd.Flags().GetString("pages")
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.outputDir, _ = cmd.Flags().GetString("output-dir")
	}
	if cmd.Flags().Changed("scale") {
		cfg.scale, _ = cmd.Flags().GetFloat64("scale")
	}
	if cmd.Flags().Changed("min-dim") {
		cfg.minDim, _ = cmd.Flags().GetFloat64("min-dim")
	}
	if cmd.Flags().Changed("format") {
		cfg.format, _ = cmd.Flags().GetString("format")
	}
	if cmd.Flags().Changed("output") {
		cfg.outputFile, _ = cmd.Flags().GetString("output")
	}
	cfg.quiet, _ = cmd.Flags().GetBool("quiet")

	if cfg.scale <= 0 {
		return nil, fmt.Errorf("invalid scale: %g (must be > 0)", cfg.scale)
	}
	if cfg.minDim < 0 {
		return nil, fmt.Errorf("invalid min-dim: %g (must be >= 0)", cfg.minDim)
	}
	switch cfg.format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid output format: %s (must be one of: text, json)", cfg.format)
	}
	if cfg.pages != "" {
		if _, err := pdf.ParsePageRange(cfg.pages); err != nil {
			return nil, fmt.Errorf("invalid page range: %w", err)
		}
	}
	return cfg, nil
}

// runExtract handles the main extraction logic.
func runExtract(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files provided")
	}

	centralCfg := GetConfig()
	cfg, err := resolveExtractConfig(centralCfg, cmd)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	progress := func(ev extract.ProgressEvent) {
		if bar == nil {
			return
		}
		bar.Describe(ev.Label)
		_ = bar.Add(1)
	}

	engine, err := extract.New(extract.Config{
		Scale:              cfg.scale,
		MinVectorDimension: cfg.minDim,
		PageCoverage:       cfg.coverage,
		OutputDir:          cfg.outputDir,
		Progress:           progress,
	})
	if err != nil {
		return err
	}

	results := make([]*extract.DocumentResult, 0, len(args))
	for _, file := range args {
		if !cfg.quiet {
			bar = newProgressBar(file)
		}
		doc, err := engine.ExtractFileContext(cmd.Context(), file, cfg.pages)
		if bar != nil {
			_ = bar.Finish()
			bar = nil
		}
		if err != nil {
			return err
		}
		results = append(results, doc)
	}

	return outputResults(results, cfg.format, cfg.outputFile)
}

func newProgressBar(file string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(file),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// outputResults formats the run summary and writes it to the output file
// or stdout.
func outputResults(results []*extract.DocumentResult, format, outputFile string) error {
	var output string
	var err error

	switch format {
	case "json":
		output, err = formatJSON(results)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
	default: // text
		output = formatText(results)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Results written to %s\n", outputFile)
	} else {
		fmt.Print(output)
	}
	return nil
}

// formatJSON formats results as JSON.
func formatJSON(results []*extract.DocumentResult) (string, error) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatText formats results as plain text.
func formatText(results []*extract.DocumentResult) string {
	var sb strings.Builder

	for _, doc := range results {
		fmt.Fprintf(&sb, "File: %s\n", doc.Filename)
		fmt.Fprintf(&sb, "Total Pages: %d\n", doc.TotalPages)
		fmt.Fprintf(&sb, "Processing Time: %dms\n\n", doc.Processing.TotalNs/1e6)

		for _, page := range doc.Pages {
			fmt.Fprintf(&sb, "Page %s (%dx%d px):\n",
				page.PageID, page.PageImage.WidthPx, page.PageImage.HeightPx)
			for _, img := range page.Images {
				fmt.Fprintf(&sb, "  %s (%dx%d px)\n", img.ID, img.WidthPx, img.HeightPx)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("---\n\n")
	}

	return sb.String()
}
