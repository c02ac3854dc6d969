package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Chan-Developer/ReAct-agent/internal/config"
	"github.com/Chan-Developer/ReAct-agent/internal/container"
)

const version = "0.3.0"

// Exit codes.
const (
	exitOK             = 0
	exitFailure        = 1
	exitBudgetExceeded = 2
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

type globalFlags struct {
	configPath string
	logLevel   string
	provider   string
	model      string
	persist    string
}

type app struct {
	flags  globalFlags
	wiring []func(o *container.Options)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, wiring ...func(o *container.Options)) int {
	a := &app{wiring: wiring}

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintln(stderr, "Error:", err)

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFailure
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reactagent",
		Short:         "ReAct agent engine with a resume optimization crew",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", config.DefaultPath, "Path to the YAML config file")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&a.flags.provider, "provider", "", "LLM provider (openai, anthropic, vllm, modelscope, mock)")
	pf.StringVar(&a.flags.model, "model", "", "Model name")
	pf.StringVar(&a.flags.persist, "persist", "", "Export the run's artifacts to this sqlite database")

	root.AddCommand(a.drivenCmd())
	root.AddCommand(a.pipelineCmd())
	root.AddCommand(a.toolsCmd())
	root.AddCommand(a.crewsCmd())

	return root
}

// loadConfig applies flag overrides on top of the loaded config.
func (a *app) loadConfig(mutate ...func(cfg *config.Config)) (*config.Config, error) {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return nil, err
	}

	if a.flags.provider != "" {
		cfg.LLM.Provider = a.flags.provider
	}
	if a.flags.model != "" {
		cfg.LLM.Model = a.flags.model
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.persist != "" {
		cfg.Artifacts.Persist = true
		cfg.Artifacts.DBPath = a.flags.persist
	}
	for _, fn := range mutate {
		fn(cfg)
	}

	return cfg, cfg.Validate()
}

func (a *app) container(mutate ...func(cfg *config.Config)) (*container.Container, error) {
	cfg, err := a.loadConfig(mutate...)
	if err != nil {
		return nil, err
	}
	return container.New(cfg, a.wiring...)
}

// reportPersisted notes where a run's artifacts were saved.
func reportPersisted(c *container.Container, runID string, w io.Writer) {
	if c.Persistence() == nil || runID == "" {
		return
	}
	fmt.Fprintf(w, "artifacts of run %s saved to %s\n", runID, c.Config().Artifacts.DBPath)
}
