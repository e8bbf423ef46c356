package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsterling/ownerchart/pkg/errors"
	"github.com/jsterling/ownerchart/pkg/history"
	"github.com/jsterling/ownerchart/pkg/ownership"
	"github.com/jsterling/ownerchart/pkg/render/diagram"
)

// resolveOpts holds flags for the resolve command.
type resolveOpts struct {
	output  string
	formats string
	refresh bool
	noCache bool
	scale   float64
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	opts := &resolveOpts{}

	cmd := &cobra.Command{
		Use:   "resolve <company name>",
		Short: "Resolve and display a company's ownership structure",
		Long: `Resolve looks up a company's beneficial-ownership structure through the
configured backend and prints it as an expandable list. With --output, the
diagram is also written as SVG, PDF, PNG, DOT, Mermaid or JSON.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "base output path for diagram files")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "comma-separated output formats: svg, pdf, png, dot, mermaid, json (default svg)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache and refetch")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable response caching")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2.0, "PNG scale factor")

	return cmd
}

func (c *CLI) runResolve(cmd *cobra.Command, companyName string, opts *resolveOpts) error {
	if err := errors.ValidateCompanyName(companyName); err != nil {
		return err
	}

	formats := parseFormats(opts.formats)
	if err := validateFormats(formats); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := c.newClient(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Resolving %s...", companyName))
	spinner.Start()

	resp, err := client.Resolve(ctx, companyName, opts.refresh)
	if err != nil {
		spinner.StopWithError(errors.UserMessage(err))
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Resolved %s", resp.RootCompany.Name))
	prog.done(fmt.Sprintf("Resolved %d entities", resp.TotalNodes))

	printStats(resp.TotalNodes, ownership.FormatProcessingTime(resp.ProcessingTime), len(resp.Errors), resp.Cached)
	for _, msg := range resp.Errors {
		printWarning("%s", msg)
	}
	fmt.Println()
	printOutline(ownership.Outline(resp.RootCompany))

	if opts.output != "" {
		if err := c.writeArtifacts(resp, opts, formats); err != nil {
			return err
		}
	}

	if store := c.newHistory(ctx, cfg); store != nil {
		defer func() { _ = store.Close(ctx) }()
		if err := store.Add(ctx, history.NewEntry(companyName, resp)); err != nil {
			c.Logger.Warn("record history", "err", err)
		}
	}
	return nil
}

// writeArtifacts encodes the tree once and writes each requested format.
func (c *CLI) writeArtifacts(resp *ownership.Response, opts *resolveOpts, formats []string) error {
	desc, err := diagram.Encode(resp.RootCompany)
	if err != nil {
		return err
	}
	if desc.Truncated > 0 {
		printWarning("tree contains cycles; %d back edges truncated in the diagram", desc.Truncated)
	}

	fmt.Println()
	for _, format := range formats {
		path := outputPath(opts.output, format)
		data, err := artifactData(desc, resp, format, opts.scale)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		printFile(path)
	}
	return nil
}

// artifactData produces the bytes for one output format.
func artifactData(desc *diagram.Description, resp *ownership.Response, format string, scale float64) ([]byte, error) {
	switch format {
	case "svg":
		return diagram.RenderSVG(desc.DOT())
	case "pdf":
		return diagram.RenderPDF(desc.DOT())
	case "png":
		return diagram.RenderPNG(desc.DOT(), scale)
	case "dot":
		return []byte(desc.DOT()), nil
	case "mermaid":
		return []byte(desc.Mermaid()), nil
	case "json":
		return json.MarshalIndent(resp, "", "  ")
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	return strings.Split(s, ",")
}

// validFormats is the set of supported output formats, mapped to their
// file extensions.
var validFormats = map[string]string{
	"svg":     ".svg",
	"pdf":     ".pdf",
	"png":     ".png",
	"dot":     ".dot",
	"mermaid": ".mmd",
	"json":    ".json",
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if _, ok := validFormats[f]; !ok {
			return errors.New(errors.ErrCodeInvalidFormat,
				"invalid format: %s (must be 'svg', 'pdf', 'png', 'dot', 'mermaid', or 'json')", f)
		}
	}
	return nil
}

// outputPath derives the file path for a format from the base output path.
// A base that already carries the format's extension is used as-is.
func outputPath(output, format string) string {
	ext := validFormats[format]
	if filepath.Ext(output) == ext {
		return output
	}
	return strings.TrimSuffix(output, filepath.Ext(output)) + ext
}
