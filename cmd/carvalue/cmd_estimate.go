package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-carvalue/pkg/orchestrator"
	"github.com/goliatone/go-carvalue/pkg/render"
	"github.com/goliatone/go-carvalue/pkg/renderers/tui"
	"github.com/goliatone/go-carvalue/pkg/schema"
)

// promptDriver builds the terminal driver used by --interactive.
var promptDriver = func(out io.Writer) tui.PromptDriver {
	return tui.NewSurveyDriver(out)
}

type estimateOptions struct {
	set         []string
	interactive bool
	renderer    string
}

func newEstimateCmd(root *rootOptions) *cobra.Command {
	opts := &estimateOptions{}
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Run one prediction from the command line",
		Long: `Builds a vehicle record from --set Name=value pairs, or by prompting for
each field with --interactive, and prints the estimated market price.

Derived fields such as CarAge are calculated when left empty.`,
		Example: `  carvalue estimate --model model.json --set Brand=Toyota --set Year=2020 ...
  carvalue estimate --interactive --renderer json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEstimate(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&opts.set, "set", nil, "field value as Name=value (repeatable)")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "prompt for every field")
	f.StringVar(&opts.renderer, "renderer", "tui", "output renderer (tui, json or vanilla)")
	return cmd
}

func runEstimate(cmd *cobra.Command, root *rootOptions, opts *estimateOptions) error {
	ctx := cmd.Context()

	values, err := parseSet(opts.set)
	if err != nil {
		return err
	}

	a, err := root.build(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := checkFields(a.schema, values); err != nil {
		return err
	}

	if opts.interactive {
		form, err := a.orch.Form(ctx)
		if err != nil {
			return err
		}
		collector := tui.New(tui.WithPromptDriver(promptDriver(cmd.ErrOrStderr())))
		values, err = collector.Collect(ctx, form, render.RenderOptions{Values: prefill(values)})
		if err != nil {
			return fmt.Errorf("collect answers: %w", err)
		}
	}

	out, estimate, err := a.orch.RenderEstimate(ctx, orchestrator.Request{Renderer: opts.renderer}, values)
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(out); err != nil {
		return err
	}
	if !estimate.OK() {
		return fmt.Errorf("estimate failed: %s", estimate.ErrorKind)
	}
	return nil
}

// parseSet turns repeated Name=value pairs into a submission. Later pairs for
// the same name win.
func parseSet(pairs []string) (url.Values, error) {
	values := url.Values{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: want Name=value", pair)
		}
		values.Set(name, strings.TrimSpace(value))
	}
	return values, nil
}

func checkFields(s schema.Schema, values url.Values) error {
	for name := range values {
		if _, ok := s.Field(name); !ok {
			return fmt.Errorf("unknown field %q", name)
		}
	}
	return nil
}

func prefill(values url.Values) map[string]any {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]any, len(values))
	for name := range values {
		out[name] = values.Get(name)
	}
	return out
}
