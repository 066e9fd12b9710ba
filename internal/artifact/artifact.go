// SPDX-License-Identifier: AGPL-3.0

// Package artifact defines the JSON input shape a run consumes:
// JobArtifact (the compiled-contract-plus-config document) and its
// metadata envelope.
package artifact

import (
	"encoding/json"

	"github.com/web-ghost-dotcom/cbse/internal/config"
)

// ContractData is one compiled contract under test.
type ContractData struct {
	Name          string          `json:"name"`
	BytecodeHex   string          `json:"bytecode_hex"`
	ABI           json.RawMessage `json:"abi"`
	TestFunctions []string        `json:"test_functions"`
}

// Metadata records provenance of the artifact.
type Metadata struct {
	CreatedAt string `json:"created_at"`
	Version   string `json:"version"`
}

// JobArtifact is the full input document for one run.
type JobArtifact struct {
	Contracts []ContractData         `json:"contracts"`
	Config    config.ExecutionConfig `json:"config"`
	Metadata  Metadata               `json:"metadata"`
}

// Marshal serializes the artifact as JSON.
func (a *JobArtifact) Marshal() ([]byte, error) { return json.MarshalIndent(a, "", "  ") }

// Unmarshal parses a JobArtifact from JSON bytes.
func Unmarshal(b []byte) (*JobArtifact, error) {
	var a JobArtifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
