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

package core

import (
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

type ID uint64

func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// MoleculeType is the kind of biological entity a candidate describes.
type MoleculeType string

const (
	MoleculeTypeProtein       MoleculeType = "PROTEIN"
	MoleculeTypeDNA           MoleculeType = "DNA"
	MoleculeTypeSmallMolecule MoleculeType = "SMALL_MOLECULE"
)

// SourceDB names the database a citation was drawn from.
type SourceDB string

const (
	SourceDBPubMed    SourceDB = "PubMed"
	SourceDBProtein   SourceDB = "Protein"
	SourceDBStructure SourceDB = "Structure"
)

type Source struct {
	ID      string   `yaml:"id"` // PubMed or PDB accession
	Title   string   `yaml:"title"`
	URL     string   `yaml:"url"`
	Authors []string `yaml:"authors"`
	Date    string   `yaml:"date"` // YYYY-MM-DD
	DB      SourceDB `yaml:"db"`
}

// Citation renders the short "First et al., YYYY" form.
func (s Source) Citation() string {
	author := "Unknown"
	if len(s.Authors) > 0 && s.Authors[0] != "" {
		author = s.Authors[0]
	}
	year, _, _ := strings.Cut(s.Date, "-")
	if year == "" {
		return author + " et al."
	}
	return author + " et al., " + year
}

type Chunk struct {
	ID        string `yaml:"id"`
	Text      string `yaml:"text"`
	VectorID  string `yaml:"vector_id,omitempty"`
	StartChar int    `yaml:"start_char,omitempty"`
	EndChar   int    `yaml:"end_char,omitempty"`
}

// Candidate is a single entry of the searchable pool. Candidates are
// treated as immutable once the pool has been loaded.
type Candidate struct {
	ID              string       `yaml:"id"`
	Score           float32      `yaml:"score"` // similarity score reported by the index
	Source          Source       `yaml:"source"`
	Chunk           Chunk        `yaml:"chunk"`
	StructureID     string       `yaml:"pdb_id,omitempty"`
	DeltaG          *float64     `yaml:"delta_g,omitempty"`          // Gibbs free energy, kcal/mol
	MolecularWeight *float64     `yaml:"molecular_weight,omitempty"` // Da
	Tags            []string     `yaml:"tags"`
	Type            MoleculeType `yaml:"type"`
	Vector          []float32    `yaml:"-"` // chunk embedding, populated at ingestion
}

// Key returns the storage ID for the candidate.
func (c *Candidate) Key() ID {
	return IDFromContent(c.ID)
}

// RelevanceText is the text matched against free-text queries.
func (c *Candidate) RelevanceText() string {
	return c.Chunk.Text + c.Source.Title
}

// StabilityBand classifies a candidate's ΔG for display.
type StabilityBand int

const (
	StabilityUnknown StabilityBand = iota
	StabilityModerate
	StabilityStrong
)

// strongStabilityCutoff is the ΔG (kcal/mol) below which a complex is
// considered strongly stable.
const strongStabilityCutoff = -10.0

func (c *Candidate) StabilityBand() StabilityBand {
	if c.DeltaG == nil || *c.DeltaG == 0 {
		return StabilityUnknown
	}
	if *c.DeltaG < strongStabilityCutoff {
		return StabilityStrong
	}
	return StabilityModerate
}

func (b StabilityBand) String() string {
	switch b {
	case StabilityStrong:
		return "strong"
	case StabilityModerate:
		return "moderate"
	default:
		return "unknown"
	}
}

// SearchParams are the user-tunable inputs of a search.
type SearchParams struct {
	Query string
	// Diversity trades exact relevance for variety, 0.0 to 1.0.
	Diversity float64
	// MinDeltaG is an inclusive upper bound on a candidate's ΔG.
	MinDeltaG float64
	// UseSemantic is carried through for callers but does not change ranking.
	UseSemantic bool
	// Limit caps the result count. Zero or negative means no cap.
	Limit int
}

// DefaultSearchParams mirrors the initial state of a fresh session.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Diversity:   0.5,
		MinDeltaG:   -5.0,
		UseSemantic: true,
		Limit:       20,
	}
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// ParseRiskLevel matches a risk level case-insensitively.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow, true
	case "medium", "moderate":
		return RiskMedium, true
	case "high":
		return RiskHigh, true
	}
	return "", false
}

// Analysis is an interpretive summary of a single candidate.
type Analysis struct {
	Summary   string
	NextSteps []string
	RiskLevel RiskLevel
}

// Match pairs a candidate with a relevance score for a particular query.
type Match struct {
	Candidate *Candidate
	Score     float32
}
