package questionbank

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var embeddedBank []byte

// File is the on-disk bank format.
type File struct {
	Version string             `yaml:"version"`
	Tiers   map[string][]Entry `yaml:"tiers"`
}

// Entry is one question as written in the bank file.
type Entry struct {
	ID       string            `yaml:"id"`
	Question string            `yaml:"question"`
	Options  map[string]string `yaml:"options"`
	Answer   string            `yaml:"answer"`
}

// Default returns the bank compiled into the binary.
func Default() (*Bank, error) {
	return Parse(embeddedBank)
}

// LoadFile reads, parses, and validates a bank file.
func LoadFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates bank YAML. Unknown fields are rejected.
func Parse(data []byte) (*Bank, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	var extra yaml.Node
	if err := decoder.Decode(&extra); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return build(f)
}
