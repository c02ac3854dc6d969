package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/internal/config"
	"github.com/Chan-Developer/ReAct-agent/runner"
)

type drivenFlags struct {
	refs      []string
	maxRounds int
	strategy  string
	markdown  bool
}

func (a *app) drivenCmd() *cobra.Command {
	var f drivenFlags

	cmd := &cobra.Command{
		Use:   "driven [prompt]",
		Short: "Let the ReAct agent drive the tools toward a goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDriven(cmd, strings.Join(args, " "), f)
		},
	}

	cmd.Flags().StringArrayVar(&f.refs, "ref", nil, "Seed an artifact from a JSON file, as key=file.json (repeatable)")
	cmd.Flags().IntVar(&f.maxRounds, "max-rounds", 0, "Round budget (defaults to agent.max_rounds)")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "Parsing strategy: structured or tagged")
	cmd.Flags().BoolVar(&f.markdown, "markdown", false, "Render the answer as Markdown")

	return cmd
}

func (a *app) runDriven(cmd *cobra.Command, goal string, f drivenFlags) error {
	seed, err := loadRefs(f.refs)
	if err != nil {
		return err
	}

	c, err := a.container(func(cfg *config.Config) {
		if f.strategy != "" {
			cfg.Agent.Strategy = f.strategy
		}
	})
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	if timeout := c.Config().LLM.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	out, err := c.Runner().Run(ctx, goal, func(o *runner.RunOptions) {
		o.Seed = seed
		o.MaxRounds = f.maxRounds
	})
	if out != nil {
		reportPersisted(c, out.RunID, cmd.ErrOrStderr())
	}
	if err != nil {
		return err
	}

	res := out.Result
	answer := res.Answer
	if f.markdown {
		if rendered, rerr := renderMarkdown(answer); rerr == nil {
			answer = rendered
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)

	if len(res.ToolResults) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d round(s), %d tool call(s), artifacts: %s\n",
			res.Rounds, len(res.ToolResults), strings.Join(out.References.Keys(), ", "))
	}

	if res.Err != nil {
		code := exitFailure
		if errors.Is(res.Err, core.ErrBudgetExceeded) {
			code = exitBudgetExceeded
		}
		return &exitError{code: code, err: fmt.Errorf("no final answer: %w", res.Err)}
	}

	return nil
}

// loadRefs reads key=file.json pairs into artifact payloads.
func loadRefs(pairs []string) (map[string]any, error) {
	seed := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, path, ok := strings.Cut(p, "=")
		if !ok || key == "" || path == "" {
			return nil, fmt.Errorf("--ref %q: want key=file.json", p)
		}
		key = strings.TrimPrefix(key, "@")

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("--ref %s: %w", key, err)
		}

		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("--ref %s: %s is not valid JSON: %w", key, path, err)
		}
		seed[key] = v
	}
	return seed, nil
}

func renderMarkdown(text string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return "", err
	}
	return r.Render(text)
}
