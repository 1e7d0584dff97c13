package migration

import (
	"crypto/sha256"
	"fmt"

	"gopkg.in/yaml.v3"
)

type checksumOp struct {
	Type string    `yaml:"type"`
	Op   Operation `yaml:"op"`
}

type checksumDoc struct {
	Key  Key          `yaml:"key"`
	Deps []Key        `yaml:"deps"`
	Ops  []checksumOp `yaml:"ops"`
}

// Checksum fingerprints the descriptor's identity, dependencies and operations.
func Checksum(m Migration) (string, error) {
	doc := checksumDoc{Key: m.Key(), Deps: m.Deps}
	for _, op := range m.Ops {
		doc.Ops = append(doc.Ops, checksumOp{Type: fmt.Sprintf("%T", op), Op: op})
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", m.Key(), err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}
