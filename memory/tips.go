package memory

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed tips.yaml
var builtinTips []byte

// Tip is one seed snippet for a KnowledgeStore.
type Tip struct {
	Content  string   `yaml:"content"`
	Source   string   `yaml:"source"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
}

// BuiltinTips returns the resume writing tips shipped with the binary.
func BuiltinTips() []Tip {
	tips, err := ParseTips(builtinTips)
	if err != nil {
		panic(fmt.Sprintf("memory: builtin tips: %v", err))
	}
	return tips
}

// ParseTips decodes a YAML list of tips.
func ParseTips(data []byte) ([]Tip, error) {
	var tips []Tip
	if err := yaml.Unmarshal(data, &tips); err != nil {
		return nil, fmt.Errorf("parse tips: %w", err)
	}
	return tips, nil
}

// LoadTips reads a YAML list of tips from path.
func LoadTips(path string) ([]Tip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tips: %w", err)
	}
	return ParseTips(data)
}

// Seed stores every tip and returns how many were added. Tips with empty
// content are skipped.
func (k *KnowledgeStore) Seed(tips []Tip) (int, error) {
	n := 0
	for _, tip := range tips {
		if tip.Content == "" {
			continue
		}

		md := map[string]any{TagsKey: append([]string(nil), tip.Tags...)}
		if tip.Category != "" {
			md["category"] = tip.Category
		}
		if tip.Source != "" {
			md["source"] = tip.Source
		}

		if _, err := k.Store(tip.Content, md); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
