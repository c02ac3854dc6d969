// Package container wires the agent services from a config using
// go.uber.org/dig. Callers use the typed getters and never import dig.
package container

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"go.uber.org/dig"

	"github.com/Chan-Developer/ReAct-agent/agent"
	"github.com/Chan-Developer/ReAct-agent/artifact/sqlstore"
	"github.com/Chan-Developer/ReAct-agent/internal/config"
	"github.com/Chan-Developer/ReAct-agent/logging"
	"github.com/Chan-Developer/ReAct-agent/memory"
	"github.com/Chan-Developer/ReAct-agent/model"
	anthropicmodel "github.com/Chan-Developer/ReAct-agent/model/anthropic"
	openaimodel "github.com/Chan-Developer/ReAct-agent/model/openai"
	"github.com/Chan-Developer/ReAct-agent/orchestrator"
	"github.com/Chan-Developer/ReAct-agent/parser"
	"github.com/Chan-Developer/ReAct-agent/resume"
	"github.com/Chan-Developer/ReAct-agent/runner"
	"github.com/Chan-Developer/ReAct-agent/tool"
	"github.com/Chan-Developer/ReAct-agent/tool/builtin"
)

// DrivenAgentName names the driving ReAct agent.
const DrivenAgentName = "resume_assistant"

const drivenInstruction = `You are a resume assistant. Work step by step with the tools.
Tools store their results as artifacts and return references such as @optimized;
pass those references to later tools instead of copying content.
When you are done, reply with "Final Answer:" followed by a short summary.`

// Container holds the resolved services.
type Container struct {
	cfg          *config.Config
	logger       logging.Logger
	llm          model.Model
	knowledge    *memory.KnowledgeStore
	persistence  *sqlstore.Store
	registry     *tool.Registry
	orchestrator *orchestrator.Orchestrator
	agent        *agent.ReActAgent
	runner       *runner.Runner
}

func (c *Container) Config() *config.Config                   { return c.cfg }
func (c *Container) Logger() logging.Logger                   { return c.logger }
func (c *Container) Model() model.Model                       { return c.llm }
func (c *Container) Knowledge() *memory.KnowledgeStore        { return c.knowledge }
func (c *Container) Persistence() *sqlstore.Store             { return c.persistence }
func (c *Container) Registry() *tool.Registry                 { return c.registry }
func (c *Container) Orchestrator() *orchestrator.Orchestrator { return c.orchestrator }
func (c *Container) Agent() *agent.ReActAgent                 { return c.agent }
func (c *Container) Runner() *runner.Runner                   { return c.runner }

// Options overrides wired services, mainly for tests.
type Options struct {
	// Model replaces the configured backend.
	Model model.Model
	// Logger replaces the logger built from the config.
	Logger logging.Logger
}

// New builds and wires all services from cfg.
func New(cfg *config.Config, optFns ...func(o *Options)) (*Container, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	d := dig.New()

	providers := []any{
		func() *config.Config { return cfg },
		func(cfg *config.Config) logging.Logger {
			if opts.Logger != nil {
				return opts.Logger
			}
			return logging.NewLogger(cfg.LoggerConfig())
		},
		func(cfg *config.Config) (model.Model, error) {
			if opts.Model != nil {
				return opts.Model, nil
			}
			return NewModel(cfg.LLM)
		},
		newKnowledge,
		newPersistence,
		newRegistry,
		newOrchestrator,
		newAgent,
		newRunner,
	}
	for _, p := range providers {
		if err := d.Provide(p); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		logger logging.Logger,
		llm model.Model,
		knowledge *memory.KnowledgeStore,
		persistence *sqlstore.Store,
		registry *tool.Registry,
		orch *orchestrator.Orchestrator,
		a *agent.ReActAgent,
		r *runner.Runner,
	) {
		result = &Container{
			cfg:          cfg,
			logger:       logger,
			llm:          llm,
			knowledge:    knowledge,
			persistence:  persistence,
			registry:     registry,
			orchestrator: orch,
			agent:        a,
			runner:       r,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("wire services: %w", dig.RootCause(err))
	}

	return result, nil
}

// Close releases the artifact database when persistence is enabled.
func (c *Container) Close() error {
	if c.persistence == nil {
		return nil
	}
	return c.persistence.Close()
}

// NewModel builds the backend named by cfg.Provider. vllm and modelscope
// speak the OpenAI protocol at cfg.BaseURL.
func NewModel(cfg config.LLMConfig) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, config.ProviderVLLM, config.ProviderModelScope:
		if cfg.Provider != config.ProviderOpenAI && cfg.BaseURL == "" {
			return nil, fmt.Errorf("provider %s requires llm.base_url", cfg.Provider)
		}
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.Temperature = cfg.Temperature
			if cfg.MaxTokens > 0 {
				o.MaxCompletionTokens = cfg.MaxTokens
			}
			o.BaseURL = cfg.BaseURL
			o.APIKey = cfg.APIKey
		}), nil
	case config.ProviderAnthropic:
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if cfg.Model != "" {
				o.Model = anthropic.Model(cfg.Model)
			}
			o.Temperature = cfg.Temperature
			if cfg.MaxTokens > 0 {
				o.MaxTokens = cfg.MaxTokens
			}
			o.BaseURL = cfg.BaseURL
			o.APIKey = cfg.APIKey
		}), nil
	case config.ProviderMock:
		return model.NewScriptedModel().WithFallback(model.EchoTurn), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func newKnowledge(cfg *config.Config, logger logging.Logger) (*memory.KnowledgeStore, error) {
	k := memory.NewKnowledgeStore()

	if !cfg.Knowledge.SkipBuiltin {
		if _, err := k.Seed(memory.BuiltinTips()); err != nil {
			return nil, err
		}
	}

	if cfg.Knowledge.File != "" {
		tips, err := memory.LoadTips(cfg.Knowledge.File)
		if err != nil {
			return nil, err
		}
		if _, err := k.Seed(tips); err != nil {
			return nil, err
		}
	}

	logger.Debug("knowledge.seeded", "knowledge.snippets", k.Len())

	return k, nil
}

// newPersistence opens the artifact database, or returns nil when
// persistence is off.
func newPersistence(cfg *config.Config, logger logging.Logger) (*sqlstore.Store, error) {
	if !cfg.Artifacts.Persist {
		return nil, nil
	}
	return sqlstore.Open(cfg.Artifacts.DBPath, func(o *sqlstore.Options) {
		o.Logger = logger
	})
}

func newRegistry(cfg *config.Config, llm model.Model, knowledge *memory.KnowledgeStore, logger logging.Logger) (*tool.Registry, error) {
	reg := tool.NewRegistry(func(o *tool.RegistryOptions) {
		o.Logger = logger
	})

	if err := builtin.Register(reg, func(o *builtin.Options) {
		o.WorkDir = cfg.Agent.WorkDir
		o.Knowledge = knowledge
	}); err != nil {
		return nil, err
	}

	if err := resume.RegisterTools(reg, llm, func(o *resume.ToolOptions) {
		o.Logger = logger
	}); err != nil {
		return nil, err
	}

	return reg, nil
}

func newOrchestrator(llm model.Model, knowledge *memory.KnowledgeStore, persistence *sqlstore.Store, logger logging.Logger) (*orchestrator.Orchestrator, error) {
	o := orchestrator.New(func(o *orchestrator.Options) {
		o.Logger = logger
	})

	if err := o.Register(resume.CrewName, resume.Factory(llm, func(o *resume.CrewOptions) {
		o.Logger = logger
		o.Knowledge = knowledge
		if persistence != nil {
			o.Persist = persistence
		}
	})); err != nil {
		return nil, err
	}

	return o, nil
}

func newAgent(cfg *config.Config, llm model.Model, registry *tool.Registry, logger logging.Logger) *agent.ReActAgent {
	temperature := cfg.LLM.Temperature
	return agent.NewReActAgent(DrivenAgentName, llm, registry, func(o *agent.ReActAgentOptions) {
		o.Description = "Drives the resume tools to optimize a resume end to end"
		o.Instruction = agent.NewInstructionFromText(drivenInstruction)
		o.MaxRounds = cfg.Agent.MaxRounds
		o.Strategy = parser.New(cfg.Strategy())
		o.Temperature = &temperature
		o.Logger = logger
	})
}

func newRunner(a *agent.ReActAgent, persistence *sqlstore.Store, logger logging.Logger) *runner.Runner {
	return runner.New(a, func(o *runner.Options) {
		if persistence != nil {
			o.Persist = persistence
		}
		o.Logger = logger
	})
}
