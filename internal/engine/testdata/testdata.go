package testdata

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var corpusYAML []byte

// CorpusEntry is a labeled log line for classification validation.
type CorpusEntry struct {
	Raw           string   `yaml:"raw"`
	Whitelist     []string `yaml:"whitelist"`
	ExpectedKind  string   `yaml:"expected_kind"`
	ExpectedUser  string   `yaml:"expected_user"`
	ExpectedIP    string   `yaml:"expected_ip"`
	ExpectedAlert bool     `yaml:"expected_alert"`
	ExpectedTitle string   `yaml:"expected_title"`
	Description   string   `yaml:"description"`
}

// LoadCorpus parses the embedded corpus.yaml and returns all entries.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := yaml.Unmarshal(corpusYAML, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus.yaml: %w", err)
	}
	return entries, nil
}
