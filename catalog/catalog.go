// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package catalog reads candidate records from YAML and exposes the loaded
// set as an immutable Pool.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/poiesic/bioorbit/core"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seed []byte

// Seed returns the built-in candidate catalog.
func Seed() ([]*core.Candidate, error) {
	return Load(bytes.NewReader(seed))
}

// LoadFile reads a catalog from a YAML file on disk.
func LoadFile(path string) ([]*core.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	candidates, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return candidates, nil
}

// Load decodes a YAML sequence of candidates and validates every entry.
func Load(r io.Reader) ([]*core.Candidate, error) {
	var candidates []*core.Candidate
	if err := yaml.NewDecoder(r).Decode(&candidates); err != nil {
		if err == io.EOF {
			return nil, ErrEmptyCatalog
		}
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrEmptyCatalog
	}

	seen := make(map[string]struct{}, len(candidates))
	for i, c := range candidates {
		if err := core.ValidateCandidate(c); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return candidates, nil
}
