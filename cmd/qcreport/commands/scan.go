package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/qcreport/pkg/discovery"
	"github.com/Sumatoshi-tech/qcreport/pkg/report"
)

// ErrNoSearchTokens is returned by scan without --name or --content.
var ErrNoSearchTokens = errors.New("no search tokens given, use --name or --content")

// ScanCommand holds configuration for the scan command.
type ScanCommand struct {
	global *globalOptions

	names    []string
	contents []string
	noColor  bool
}

// NewScanCommand creates the scan command.
func NewScanCommand(global *globalOptions) *cobra.Command {
	sc := &ScanCommand{global: global}

	cmd := &cobra.Command{
		Use:   "scan [dir...]",
		Short: "List the files a search would match",
		Long:  "Run file discovery with the given filename and content tokens and print every match.",
		RunE:  sc.run,
	}

	cmd.Flags().StringSliceVar(&sc.names, "name", nil, "Filename tokens")
	cmd.Flags().StringSliceVar(&sc.contents, "content", nil, "Content tokens searched line by line")
	cmd.Flags().BoolVar(&sc.noColor, "no-color", false, "disable colored output")

	return cmd
}

func (sc *ScanCommand) run(cmd *cobra.Command, args []string) error {
	spec := discovery.SearchSpec{Names: sc.names, Contents: sc.contents}
	if spec.IsEmpty() {
		return ErrNoSearchTokens
	}

	if sc.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	cfg, err := sc.global.loadConfig()
	if err != nil {
		return err
	}

	if len(args) > 0 {
		cfg.Search.Roots = args
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	run, err := report.NewRun(cfg)
	if err != nil {
		return err
	}

	var matches []*discovery.LogFileMatch

	for match := range run.Discovery("scan").Discover(ctx, spec, discovery.ModeMetadata) {
		matches = append(matches, match)
	}

	writeMatches(cmd.OutOrStdout(), matches)

	return nil
}

func writeMatches(out io.Writer, matches []*discovery.LogFileMatch) {
	if len(matches) == 0 {
		color.New(color.FgYellow).Fprintln(out, "No matching files")

		return
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Sample", "File", "Matched By", "Size"})

	var total uint64

	for _, match := range matches {
		size := "-"

		if info, err := os.Stat(match.Path()); err == nil {
			total += uint64(info.Size()) //nolint:gosec // file sizes are non-negative.
			size = humanize.Bytes(uint64(info.Size())) //nolint:gosec // file sizes are non-negative.
		}

		tbl.AppendRow(table.Row{match.SampleName, match.Path(), matchLabel(match.MatchedBy), size})
	}

	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d files", len(matches)), "", humanize.Bytes(total)})

	fmt.Fprintln(out, tbl.Render())
}

func matchLabel(kind discovery.MatchKind) string {
	if kind == discovery.MatchedByName {
		return color.New(color.FgGreen).Sprint(string(kind))
	}

	return color.New(color.FgCyan).Sprint(string(kind))
}
