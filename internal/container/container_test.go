package container

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/internal/config"
	"github.com/Chan-Developer/ReAct-agent/logging"
	"github.com/Chan-Developer/ReAct-agent/memory"
	"github.com/Chan-Developer/ReAct-agent/model"
	anthropicmodel "github.com/Chan-Developer/ReAct-agent/model/anthropic"
	openaimodel "github.com/Chan-Developer/ReAct-agent/model/openai"
	"github.com/Chan-Developer/ReAct-agent/resume"
	"github.com/Chan-Developer/ReAct-agent/runner"
)

func mockConfig() *config.Config {
	cfg := config.Default()
	cfg.LLM.Provider = config.ProviderMock
	return cfg
}

func TestNew_WiresServices(t *testing.T) {
	c, err := New(mockConfig(), func(o *Options) { o.Logger = logging.NoOpLogger{} })
	require.NoError(t, err)

	assert.IsType(t, &model.ScriptedModel{}, c.Model())
	assert.Equal(t, []string{
		"calculator", "knowledge_search",
		resume.ToolContentOptimizer, resume.ToolStyleSelector, resume.ToolLayoutDesigner, resume.ToolPaginationOptimizer, resume.ToolResumeReview,
	}, c.Registry().Names())
	assert.Equal(t, []string{resume.CrewName}, c.Orchestrator().Names())
	assert.Equal(t, DrivenAgentName, c.Agent().Name())
	assert.NotNil(t, c.Runner())
	assert.Nil(t, c.Persistence())
	assert.NoError(t, c.Close())
	assert.Equal(t, len(memory.BuiltinTips()), c.Knowledge().Len())
}

func TestNew_SeedsKnowledge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tips.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- content: Mention Kubernetes operators you have written.\n  tags: [kubernetes]\n"), 0o600))

	cfg := mockConfig()
	cfg.Knowledge.File = path
	cfg.Knowledge.SkipBuiltin = true

	c, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Knowledge().Len())

	search, err := c.Registry().Resolve("knowledge_search")
	require.NoError(t, err)

	got, err := search.Call(core.NewToolContext(context.Background(), "call_1"), map[string]any{"query": "kubernetes operators"})
	require.NoError(t, err)
	assert.Contains(t, fmt.Sprint(got), "Kubernetes operators")
}

func TestNew_BuiltinKnowledgeHit(t *testing.T) {
	c, err := New(mockConfig())
	require.NoError(t, err)

	hits, err := c.Knowledge().Search("quantify results with numbers", 3)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Contains(t, hits[0].Content, "Quantify results")
}

func TestNew_KnowledgeFileMissing(t *testing.T) {
	cfg := mockConfig()
	cfg.Knowledge.File = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := New(cfg)
	assert.ErrorContains(t, err, "read tips")
}

func TestNew_Persistence(t *testing.T) {
	cfg := mockConfig()
	cfg.Artifacts.Persist = true
	cfg.Artifacts.DBPath = filepath.Join(t.TempDir(), "runs.db")

	c, err := New(cfg, func(o *Options) {
		o.Model = model.NewScriptedModel().ThenText("Final Answer: done")
	})
	require.NoError(t, err)
	require.NotNil(t, c.Persistence())
	defer c.Close()

	out, err := c.Runner().Run(context.Background(), "finish", func(o *runner.RunOptions) {
		o.Seed = map[string]any{"note": "kept"}
	})
	require.NoError(t, err)

	keys, err := c.Persistence().List(out.RunID)
	require.NoError(t, err)
	assert.Equal(t, []string{"note"}, keys)
}

func TestNew_FileToolsNeedWorkDir(t *testing.T) {
	cfg := mockConfig()
	cfg.Agent.WorkDir = t.TempDir()

	c, err := New(cfg)
	require.NoError(t, err)
	assert.True(t, c.Registry().Has("read_file"))
	assert.True(t, c.Registry().Has("write_file"))
}

func TestNew_ModelOverride(t *testing.T) {
	m := model.NewScriptedModel().ThenText("Final Answer: 42")

	c, err := New(config.Default(), func(o *Options) { o.Model = m })
	require.NoError(t, err)

	out, err := c.Runner().Run(context.Background(), "what is the answer?")
	require.NoError(t, err)
	assert.Equal(t, "42", out.Result.Answer)
	assert.Equal(t, 1, m.Calls())
}

func TestNew_CrewRunsWithMock(t *testing.T) {
	c, err := New(mockConfig())
	require.NoError(t, err)

	res := c.Orchestrator().Run(context.Background(), core.Task{Name: "resume", Input: map[string]any{"name": "Ada"}})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "content_optimization")
}

func TestNewModel(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.LLMConfig
		want   any
		errMsg string
	}{
		{name: "openai", cfg: config.LLMConfig{Provider: config.ProviderOpenAI, APIKey: "sk"}, want: &openaimodel.Model{}},
		{name: "vllm", cfg: config.LLMConfig{Provider: config.ProviderVLLM, BaseURL: "http://localhost:8000/v1"}, want: &openaimodel.Model{}},
		{name: "vllm without url", cfg: config.LLMConfig{Provider: config.ProviderVLLM}, errMsg: "requires llm.base_url"},
		{name: "anthropic", cfg: config.LLMConfig{Provider: config.ProviderAnthropic, APIKey: "sk"}, want: &anthropicmodel.Model{}},
		{name: "mock", cfg: config.LLMConfig{Provider: config.ProviderMock}, want: &model.ScriptedModel{}},
		{name: "unknown", cfg: config.LLMConfig{Provider: "gemini"}, errMsg: "unknown provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewModel(tt.cfg)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, m)
		})
	}
}
