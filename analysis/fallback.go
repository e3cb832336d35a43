package analysis

import "github.com/poiesic/bioorbit/core"

// OfflineAnalysis is returned when no credential is available. A fresh
// value is built on every call so callers may modify it.
func OfflineAnalysis() core.Analysis {
	return core.Analysis{
		Summary: "API Key required for live GenAI analysis. Using cached static analysis.",
		NextSteps: []string{
			"Validate binding affinity via Surface Plasmon Resonance (SPR).",
			"Perform site-directed mutagenesis on interacting residues.",
			"Run Molecular Dynamics (MD) simulation for 100ns.",
		},
		RiskLevel: core.RiskLow,
	}
}

// FailureAnalysis is returned when a live analysis could not be produced.
func FailureAnalysis() core.Analysis {
	return core.Analysis{
		Summary:   "Error generating analysis.",
		NextSteps: []string{"Check console logs", "Verify API Key"},
		RiskLevel: core.RiskHigh,
	}
}
