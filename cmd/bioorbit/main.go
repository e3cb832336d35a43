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

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/bioorbit"
	"github.com/poiesic/bioorbit/ai"
	"github.com/poiesic/bioorbit/analysis"
	"github.com/poiesic/bioorbit/core"
	"github.com/poiesic/bioorbit/ranking"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	defaults := core.DefaultSearchParams()

	return &cli.App{
		Name:  "bioorbit",
		Usage: "Rank biological candidates and analyze them with generative AI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Path to a YAML candidate catalog (defaults to the built-in seed)",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name; enables semantic relevance when set",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List every candidate in the catalog",
				Action: listCommand,
			},
			{
				Name:   "search",
				Usage:  "Filter and rank candidates",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Free-text query",
					},
					&cli.Float64Flag{
						Name:  "diversity",
						Usage: "Trade relevance for variety, 0.0 to 1.0",
						Value: defaults.Diversity,
					},
					&cli.Float64Flag{
						Name:  "min-delta-g",
						Usage: "Keep candidates with ΔG at or below this value (kcal/mol)",
						Value: defaults.MinDeltaG,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results, 0 for no limit",
						Value: defaults.Limit,
					},
					&cli.StringFlag{
						Name:  "missing-stability",
						Usage: "How to treat candidates without ΔG (zero, include, exclude)",
						Value: ranking.TreatMissingAsZero.String(),
					},
					&cli.BoolFlag{
						Name:  "semantic",
						Usage: "Request semantic search",
						Value: defaults.UseSemantic,
					},
				},
			},
			{
				Name:   "analyze",
				Usage:  "Summarize a candidate and propose next steps",
				Action: analyzeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Candidate ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "Credential for the generation backend; offline analysis when empty",
						EnvVars: []string{"API_KEY", "GEMINI_API_KEY"},
					},
					&cli.StringFlag{
						Name:  "backend",
						Usage: "Generation backend (googleai, openai)",
						Value: ai.BackendGoogleAI,
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Generation model name",
						Value: ai.DefaultConfig().GenerationModel,
					},
					&cli.StringFlag{
						Name:  "generation-host",
						Usage: "OpenAI-compatible generation host URL",
						Value: ai.DefaultConfig().GenerationHost,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Upper bound on a single generation request",
						Value: analysis.DefaultTimeout,
					},
				},
			},
			{
				Name:   "view",
				Usage:  "Print the 3D structure viewer link for a candidate",
				Action: viewCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Candidate ID",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "html",
						Usage: "Print an embeddable iframe instead of the URL",
					},
				},
			},
		},
	}
}

// aiConfig builds the AI configuration from global and command flags.
// Flags a command does not define keep their defaults.
func aiConfig(c *cli.Context) *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	}
	if backend := c.String("backend"); backend != "" {
		opts = append(opts, ai.WithBackend(backend))
	}
	if model := c.String("model"); model != "" {
		opts = append(opts, ai.WithGenerationModel(model))
	}
	if host := c.String("generation-host"); host != "" {
		opts = append(opts, ai.WithGenerationHost(host))
	}
	if timeout := c.Duration("timeout"); timeout > 0 {
		opts = append(opts, ai.WithTimeout(timeout))
	}
	return ai.NewConfig(opts...)
}

func openOrbit(c *cli.Context, extra ...bioorbit.Option) (*bioorbit.Orbit, error) {
	config := aiConfig(c)
	embeddings := c.String("embedding-model") != ""

	provider, err := bioorbit.NewProvider(config, embeddings)
	if err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []bioorbit.Option{
		bioorbit.WithProvider(provider),
		bioorbit.WithAnalysisTimeout(config.Timeout),
	}
	if path := c.String("catalog"); path != "" {
		opts = append(opts, bioorbit.WithCatalogFile(path))
	}
	if embeddings {
		opts = append(opts, bioorbit.WithIngestProgress(c.App.ErrWriter))
	}
	opts = append(opts, extra...)

	orbit, err := bioorbit.Open(c.Context, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return orbit, nil
}

func listCommand(c *cli.Context) error {
	orbit, err := openOrbit(c)
	if err != nil {
		return err
	}
	defer orbit.Close()

	printCandidates(c.App.Writer, orbit.Candidates())
	return nil
}

func searchCommand(c *cli.Context) error {
	policy, err := ranking.ParseMissingStabilityPolicy(c.String("missing-stability"))
	if err != nil {
		return err
	}

	orbit, err := openOrbit(c, bioorbit.WithMissingStability(policy))
	if err != nil {
		return err
	}
	defer orbit.Close()

	params := core.SearchParams{
		Query:       c.String("query"),
		Diversity:   c.Float64("diversity"),
		MinDeltaG:   c.Float64("min-delta-g"),
		UseSemantic: c.Bool("semantic"),
		Limit:       c.Int("limit"),
	}
	results, err := orbit.Search(c.Context, params)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(c.App.Writer, "No candidates match.")
		return nil
	}
	printCandidates(c.App.Writer, results)
	return nil
}

func analyzeCommand(c *cli.Context) error {
	orbit, err := openOrbit(c)
	if err != nil {
		return err
	}
	defer orbit.Close()

	id := c.String("id")
	candidate, err := orbit.Candidate(id)
	if err != nil {
		return err
	}

	// The analyzer enforces its own timeout; this only bounds a hung provider.
	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout")+5*time.Second)
	defer cancel()

	report, err := orbit.Analyze(ctx, id, c.String("api-key"))
	if err != nil {
		return err
	}
	if report.Err != nil {
		slog.Warn("analysis failed", "candidate", id, "err", report.Err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "%s  %s\n", candidate.ID, candidate.Source.Title)
	fmt.Fprintf(w, "Outcome: %s\n", report.Outcome)
	fmt.Fprintf(w, "Risk:    %s\n", report.Analysis.RiskLevel)
	fmt.Fprintf(w, "Summary: %s\n", report.Analysis.Summary)
	fmt.Fprintln(w, "Next steps:")
	for i, step := range report.Analysis.NextSteps {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}
	return nil
}

func viewCommand(c *cli.Context) error {
	orbit, err := openOrbit(c)
	if err != nil {
		return err
	}
	defer orbit.Close()

	frame, err := orbit.View(c.String("id"))
	if err != nil {
		return err
	}
	if c.Bool("html") {
		fmt.Fprintln(c.App.Writer, frame.HTML)
		return nil
	}
	fmt.Fprintln(c.App.Writer, frame.URL)
	return nil
}

func printCandidates(w io.Writer, candidates []*core.Candidate) {
	for i, c := range candidates {
		deltaG := "n/a"
		if c.DeltaG != nil {
			deltaG = fmt.Sprintf("%.1f", *c.DeltaG)
		}
		fmt.Fprintf(w, "%2d. %-18s %-14s score=%.2f ΔG=%-6s (%s) %s [%s]\n",
			i+1, c.ID, c.Type, c.Score, deltaG, c.StabilityBand(), c.Source.Title, c.Source.Citation())
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
