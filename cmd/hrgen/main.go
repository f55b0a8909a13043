package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yungbote/hrgen/internal/app"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/pipelines"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/titles"
)

func main() {
	pipelines.RegisterAll()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hrgen",
		Short:         "Generate HR content per job title and publish it to Google Sheets and Docs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newPipelinesCmd(), newSchemaCmd())
	return root
}

type runFlags struct {
	config     string
	titles     string
	column     string
	offset     int
	limit      int
	dryRun     bool
	onFailure  string
	validation string
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run <pipeline>",
		Short: "Generate and publish one pipeline over a titles CSV",
		Long: `Generate content for every title in the CSV, in order, and publish each row.

Example:
  hrgen run jobdesc --titles titles.csv --limit 10
  hrgen run skills --titles titles.csv --offset 250 --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), cmd.OutOrStdout(), pipelines.Name(args[0]), f)
		},
	}
	cmd.Flags().StringVar(&f.config, "config", "", "Config file (default $HRGEN_CONFIG or config.yaml)")
	cmd.Flags().StringVar(&f.titles, "titles", "", "CSV file with the job titles")
	cmd.Flags().StringVar(&f.column, "column", titles.DefaultColumn, "Title column in the CSV")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "Skip this many titles")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Process at most this many titles (0 = all)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Generate and print rows without writing to Google")
	cmd.Flags().StringVar(&f.onFailure, "on-generation-failure", "", "continue|skip (overrides config)")
	cmd.Flags().StringVar(&f.validation, "validation", "", "log|enforce (overrides config)")
	_ = cmd.MarkFlagRequired("titles")
	return cmd
}

func runPipeline(ctx context.Context, out io.Writer, name pipelines.Name, f runFlags) error {
	cfg, err := app.LoadConfig(app.ConfigPath(f.config))
	if err != nil {
		return err
	}
	if f.onFailure != "" {
		cfg.Runner.OnGenerationFailure = f.onFailure
	}
	if f.validation != "" {
		cfg.Runner.Validation = f.validation
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	all, err := titles.ReadFile(f.titles, f.column)
	if err != nil {
		return err
	}
	batch := titles.Window(all, f.offset, f.limit)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	r, err := a.Runner(ctx, name, f.dryRun, out)
	if err != nil {
		return err
	}
	sum, err := r.Run(ctx, batch)
	a.Log.Info("run finished",
		"pipeline", string(name),
		"run_id", sum.RunID.String(),
		"processed", sum.Processed,
		"published", sum.Published,
		"dry_run", sum.DryRun,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"prompt_tokens", sum.PromptTokens,
		"completion_tokens", sum.CompletionTokens,
		"elapsed", sum.Elapsed.String(),
	)
	return err
}

func newPipelinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pipelines",
		Short: "List the available pipelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tWORKSHEET\tCOLUMNS\tTEMPLATE\tDESCRIPTION")
			for _, d := range pipelines.All() {
				cols := fmt.Sprint(len(d.Layout.Header()))
				if !d.Layout.Fixed() {
					cols += "+"
				}
				tpl := "-"
				if d.HasTemplate() {
					tpl = d.TemplateDocID
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Name, d.Worksheet, cols, tpl, d.Description)
			}
			return tw.Flush()
		},
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <pipeline>",
		Short: "Print the JSON schema sent to the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := pipelines.Get(pipelines.Name(args[0]))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(d.Generation.Schema.ToOpenAI())
		},
	}
}
