// Package cli implements the tabproj command-line interface: run a
// pipeline against a local file, stdin or a URL and print or save the
// result.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/tabproj/internal/config"
	"github.com/JonMunkholm/tabproj/internal/core"
	"github.com/JonMunkholm/tabproj/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags.
var version = "development version"

// runOptions holds the flags of the run command.
type runOptions struct {
	pipeline  string
	separator string
	noHeader  bool
	head      int
	all       bool
	out       string
	encoding  string
	format    string
}

// NewRootCmd builds the command tree. Output goes to the command's out
// writer, logs to its err writer.
func NewRootCmd() *cobra.Command {
	var logLevel string
	var definitions string

	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "tabproj",
		Short:         "Select, rename and sort columns of delimited text",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, "text"))
			if definitions == "" {
				return nil
			}
			_, err := core.RegisterFile(definitions)
			return err
		},
	}
	rootCmd.SetVersionTemplate(`tabproj {{.Version}}` + "\n")
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "warn", "minimum log level (debug, info, warn, error)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&definitions, "definitions", "d", "", "YAML file of extra pipeline definitions",
	)

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newPipelinesCmd())
	return rootCmd
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [FILE|URL|-]",
		Short: "Run a pipeline and print the result",
		Long: "Run a pipeline against FILE, URL or stdin (-). Without an argument\n" +
			"the pipeline's own source url is downloaded.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) == 1 {
				source = args[0]
			}
			return runPipeline(cmd.Context(), cmd, opts, source)
		},
	}
	cmd.Flags().SortFlags = false
	cmd.Flags().StringVarP(&opts.pipeline, "pipeline", "p", "uk_macro", "pipeline key")
	cmd.Flags().StringVarP(&opts.separator, "sep", "s", "", "field separator (overrides the pipeline)")
	cmd.Flags().BoolVar(&opts.noHeader, "no-header", false, "source has no header line; columns are col0, col1, ...")
	cmd.Flags().IntVarP(&opts.head, "head", "n", -1, "rows to print (overrides the pipeline; 0 uses the default)")
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "print every row")
	cmd.Flags().StringVarP(&opts.encoding, "encoding", "e", "", "source encoding (utf-8, latin1, windows-1252)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", `output format ("text" or "csv")`)
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the full result as CSV to this file")
	return cmd
}

func newPipelinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pipelines",
		Short: "List registered pipelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listPipelines(cmd.OutOrStdout())
		},
	}
}

func listPipelines(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLABEL\tSTEPS")
	for _, def := range core.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", def.Key, def.Label, steps(def))
	}
	return tw.Flush()
}

// steps summarises the transform steps of def.
func steps(def core.Definition) string {
	var parts []string
	if len(def.Select) > 0 {
		parts = append(parts, fmt.Sprintf("select %d", len(def.Select)))
	}
	if len(def.Rename) > 0 {
		parts = append(parts, fmt.Sprintf("rename %d", len(def.Rename)))
	}
	if def.SortBy != "" {
		parts = append(parts, "sort "+def.SortBy)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

// definition resolves the pipeline key and applies the flag overrides.
func (o runOptions) definition() (core.Definition, error) {
	def, ok := core.Get(o.pipeline)
	if !ok {
		return core.Definition{}, fmt.Errorf("%w: %s", core.ErrUnknownPipeline, o.pipeline)
	}
	if o.separator != "" {
		def.Separator = o.separator
	}
	if o.noHeader {
		def.NoHeader = true
	}
	if o.encoding != "" {
		def.Encoding = o.encoding
	}
	if o.head >= 0 {
		def.Head = o.head
	}
	return def, def.Validate()
}

func runPipeline(ctx context.Context, cmd *cobra.Command, opts runOptions, source string) error {
	if opts.format != "text" && opts.format != "csv" {
		return fmt.Errorf(`invalid format %q (must be "text" or "csv")`, opts.format)
	}

	def, err := opts.definition()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	svc := core.NewService(cfg, nil)
	defer svc.Close()

	var res *core.RunResult
	switch {
	case source == "" || isURL(source):
		res, err = svc.RunDefinitionURL(ctx, def, source)
	case source == "-":
		res, err = svc.RunDefinition(ctx, def, "stdin", cmd.InOrStdin())
	default:
		f, openErr := os.Open(source)
		if openErr != nil {
			return openErr
		}
		defer f.Close()
		res, err = svc.RunDefinition(ctx, def, source, f)
	}
	if err != nil {
		return err
	}

	if opts.out != "" {
		if err := svc.ExportFile(res.ID, opts.out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", res.Rows, opts.out)
		return nil
	}

	out := res.Head
	if opts.all {
		if out, err = svc.Table(res.ID); err != nil {
			return err
		}
	}
	if opts.format == "csv" {
		return core.WriteCSV(cmd.OutOrStdout(), out)
	}
	return core.WriteText(cmd.OutOrStdout(), out)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Execute runs the command line and returns the process exit code. A .env
// file in the working directory sets defaults for unset variables.
func Execute() int {
	_ = godotenv.Load()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %s\n", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(rootCmd.ErrOrStderr(), core.FormatUserError(err))
		}
		return 1
	}
	return 0
}
