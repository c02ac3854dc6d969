package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/pipeline"
)

type pipelineFlags struct {
	input    string
	job      string
	pages    string
	template string
	save     bool
}

func (a *app) pipelineCmd() *cobra.Command {
	var f pipelineFlags

	cmd := &cobra.Command{
		Use:   "pipeline <crew>",
		Short: "Run a crew's fixed pipeline over an input document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPipeline(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVar(&f.input, "input", "-", "Input JSON file, or - for stdin")
	cmd.Flags().StringVar(&f.job, "job", "", "Target job description")
	cmd.Flags().StringVar(&f.pages, "pages", "", "Page target: one_page, two_pages or auto")
	cmd.Flags().StringVar(&f.template, "template", "", "Template name, skipping job matching")
	cmd.Flags().BoolVar(&f.save, "save", false, "Write the result to agent.output_dir")

	return cmd
}

func (a *app) runPipeline(cmd *cobra.Command, crew string, f pipelineFlags) error {
	input, err := readInput(f.input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	c, err := a.container()
	if err != nil {
		return err
	}
	defer c.Close()

	task := core.Task{Name: crew, Input: input, Context: map[string]any{}}
	for key, v := range map[string]string{"job_description": f.job, "page_preference": f.pages, "template_name": f.template} {
		if v != "" {
			task.Context[key] = v
		}
	}

	res := c.Orchestrator().Run(cmd.Context(), task)

	runID, _ := res.Output["run_id"].(string)
	reportPersisted(c, runID, cmd.ErrOrStderr())

	if !res.Success {
		printFailure(cmd.ErrOrStderr(), res)
		return &exitError{code: exitFailure, err: fmt.Errorf("crew %q failed", crew)}
	}

	data, err := json.MarshalIndent(res.Output, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	for _, s := range res.Suggestions {
		fmt.Fprintln(cmd.ErrOrStderr(), "suggestion:", s)
	}

	if f.save {
		dir := c.Config().Agent.OutputDir
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", crew, runID))
		if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
			return fmt.Errorf("save result: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "saved", path)
	}

	return nil
}

func readInput(path string, stdin io.Reader) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var input map[string]any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("input must be a JSON object: %w", err)
	}
	return input, nil
}

func printFailure(w io.Writer, res core.TaskResult) {
	fmt.Fprintln(w, "failed:", res.Error)
	if step, _ := res.Output["failed_step"].(string); step != "" {
		fmt.Fprintln(w, "failed step:", step)
	}
	if trace, ok := res.Output["trace"].([]pipeline.StepOutcome); ok {
		for _, s := range trace {
			status := "ok"
			if !s.Success {
				status = "FAILED: " + s.Error
			}
			fmt.Fprintf(w, "  %-24s %-12s %s\n", s.Step, s.Token, status)
		}
	}
	for _, line := range res.Logs {
		fmt.Fprintln(w, line)
	}
}
