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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/coldmail"
	"github.com/poiesic/coldmail/ai/openai"
	"github.com/poiesic/coldmail/config"
	"github.com/poiesic/coldmail/core"
	"github.com/poiesic/coldmail/outreach"
	"github.com/poiesic/coldmail/reembed"
)

// newProvider builds the AI provider used by every command.
var newProvider = openai.NewProvider

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	companyFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "company",
			Usage:    "Path to scraped company JSON (a record or a map of slug to record)",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "Company name; selects the record from a multi-company file",
		},
	}
	styleFlags := []cli.Flag{
		&cli.StringFlag{Name: "tone", Usage: "Desired tone"},
		&cli.StringFlag{Name: "focus", Usage: "Desired focus"},
		&cli.StringFlag{Name: "context", Usage: "Additional context for the writer"},
	}

	return &cli.App{
		Name:  "coldmail",
		Usage: "Template-driven cold outreach drafting",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "coldmail.yaml",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to BadgerDB history directory (overrides config)",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Path to template store JSON (overrides config)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "build-store",
				Usage:  "Embed a template corpus into a template store",
				Action: buildStoreCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "corpus",
						Usage:    `Path to JSON corpus: [{"email": "..."}]`,
						Required: true,
					},
				},
			},
			{
				Name:   "retrieve",
				Usage:  "Show the template emails most similar to a company",
				Action: retrieveCommand,
				Flags: append(append([]cli.Flag{}, companyFlags...),
					&cli.IntFlag{
						Name:  "top",
						Usage: "Number of templates to show",
						Value: 1,
					},
				),
			},
			{
				Name:   "generate",
				Usage:  "Adapt the best matching template email to a company",
				Action: generateCommand,
				Flags:  append(append([]cli.Flag{}, companyFlags...), styleFlags...),
			},
			{
				Name:   "linkedin",
				Usage:  "Write a short LinkedIn message for a company",
				Action: linkedInCommand,
				Flags:  append(append([]cli.Flag{}, companyFlags...), styleFlags...),
			},
			{
				Name:   "variants",
				Usage:  "Write one draft per variant mode",
				Action: variantsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Company name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "sources",
						Usage: `Path to scraped sources JSON: [{"source_type": "...", "text": "..."}]`,
					},
					&cli.StringFlag{Name: "user-bio", Usage: "Path to the sender's biography"},
					&cli.StringFlag{Name: "founder-bio", Usage: "Path to the founder's biography"},
					&cli.StringFlag{Name: "context", Usage: "Extra context for every variant"},
					&cli.StringFlag{Name: "tone", Usage: "Only generate the mode with this tone"},
					&cli.StringFlag{Name: "focus", Usage: "Only generate the mode with this focus"},
					&cli.BoolFlag{Name: "merge", Usage: "Merge the variants into a final draft"},
					&cli.StringFlag{
						Name:  "merge-tone",
						Usage: "Tone of the merged draft",
						Value: "professional",
					},
				},
			},
			{
				Name:      "grade",
				Usage:     "Score a draft heuristically",
				ArgsUsage: "[text]",
				Action:    gradeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "Read the draft from a file (- for stdin)"},
				},
			},
			{
				Name:   "revise",
				Usage:  "Revise a stored draft from feedback",
				Action: reviseCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:     "draft",
						Usage:    "ID of the draft to revise",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "feedback",
						Usage:    "What to change",
						Required: true,
					},
				},
			},
			{
				Name:   "history",
				Usage:  "List generated drafts",
				Action: historyCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "company", Usage: "Only drafts for this company"},
					&cli.DurationFlag{Name: "since", Usage: "Only drafts newer than this"},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of drafts to list",
						Value: 10,
					},
				},
			},
		},
	}
}

func openEngine(c *cli.Context) (*coldmail.Engine, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if db := c.String("db"); db != "" {
		cfg.Database = db
	}
	if store := c.String("store"); store != "" {
		cfg.Store = store
	}

	provider, err := newProvider(cfg.AIOptions())
	if err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	engine, err := coldmail.NewEngine(cfg, coldmail.WithProvider(provider))
	if err != nil {
		provider.Close()
		return nil, err
	}
	return engine, nil
}

func readCompany(c *cli.Context) (*core.CompanyRecord, error) {
	data, err := os.ReadFile(c.String("company"))
	if err != nil {
		return nil, fmt.Errorf("failed to read company data: %w", err)
	}
	return core.LookupCompany(data, c.String("name"))
}

func buildStoreCommand(c *cli.Context) error {
	corpus, err := reembed.LoadCorpus(c.String("corpus"))
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	cfg := engine.Config()
	fmt.Fprintf(c.App.ErrWriter, "Corpus: %s (%d templates)\n", c.String("corpus"), len(corpus))
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", cfg.AI.EmbeddingHost)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(c.App.ErrWriter)

	store, err := engine.BuildStore(c.Context, corpus, c.App.ErrWriter)
	if err != nil {
		return fmt.Errorf("store build failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Wrote %d templates (model %s, dimension %d) to %s\n",
		store.Len(), store.Model, store.Dimension, cfg.Store)
	return nil
}

func retrieveCommand(c *cli.Context) error {
	record, err := readCompany(c)
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	matches, err := engine.Rank(c.Context, record, max(1, c.Int("top")))
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	for i, m := range matches {
		if i > 0 {
			fmt.Fprintln(c.App.Writer)
		}
		fmt.Fprintf(c.App.Writer, "#%d template %d score %.4f\n%s\n", i+1, m.Entry.Id, m.Score, m.Entry.Email)
	}
	return nil
}

func generateCommand(c *cli.Context) error {
	record, err := readCompany(c)
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := engine.Pipeline().GenerateEmail(c.Context, outreach.EmailRequest{
		Company:           record,
		CompanyName:       c.String("name"),
		Tone:              c.String("tone"),
		Focus:             c.String("focus"),
		AdditionalContext: c.String("context"),
	})
	if err != nil {
		return err
	}

	slog.Debug("email generated", "draft_id", result.Draft.Id, "template_id", result.Template.Entry.Id,
		"score", result.Template.Score)
	printDraft(c.App.Writer, result.Draft)
	return nil
}

func linkedInCommand(c *cli.Context) error {
	record, err := readCompany(c)
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := engine.Pipeline().GenerateLinkedInMessage(c.Context, outreach.LinkedInRequest{
		Company:           record,
		CompanyName:       c.String("name"),
		Tone:              c.String("tone"),
		Focus:             c.String("focus"),
		AdditionalContext: c.String("context"),
	})
	if err != nil {
		return err
	}

	printDraft(c.App.Writer, result.Draft)
	return nil
}

func variantsCommand(c *cli.Context) error {
	req := outreach.VariantRequest{
		CompanyName:  c.String("name"),
		ExtraContext: c.String("context"),
		Tone:         c.String("tone"),
		Focus:        c.String("focus"),
	}

	if path := c.String("sources"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read sources: %w", err)
		}
		var sources []outreach.ScrapedSource
		if err := json.Unmarshal(data, &sources); err != nil {
			return fmt.Errorf("failed to parse sources %s: %w", path, err)
		}
		req.Contexts = outreach.VariantContexts(outreach.GroupSources(sources))
	}

	if c.String("user-bio") != "" && c.String("founder-bio") != "" {
		userBio, err := os.ReadFile(c.String("user-bio"))
		if err != nil {
			return err
		}
		founderBio, err := os.ReadFile(c.String("founder-bio"))
		if err != nil {
			return err
		}
		_, req.CommonalityHint = outreach.Commonalities(string(userBio), string(founderBio))
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	variants, err := engine.Pipeline().GenerateVariants(c.Context, req)
	if err != nil {
		return err
	}

	for i, v := range variants {
		fmt.Fprintf(c.App.Writer, "[%d] %s (%s)\n", i+1, v.Mode.Focus, v.Mode.Tone)
		if v.Err != nil {
			fmt.Fprintf(c.App.Writer, "error: %v\n\n", v.Err)
			continue
		}
		g := outreach.Grade(v.Email)
		fmt.Fprintf(c.App.Writer, "Title: %s\n%s\nGrade: %d/10 (%s)\n\n", v.Title, v.Email, g.Grade, g.Diagnostics)
	}

	if !c.Bool("merge") {
		return nil
	}

	merged, err := engine.Pipeline().MergeVariants(c.Context, req.CompanyName, variants, c.String("merge-tone"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Merged draft:")
	printDraft(c.App.Writer, merged.Draft)
	return nil
}

func gradeCommand(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")

	switch path := c.String("file"); path {
	case "":
	case "-":
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return err
		}
		text = string(data)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		text = string(data)
	}

	if strings.TrimSpace(text) == "" {
		return errors.New("nothing to grade: pass the draft as arguments or with --file")
	}

	out, err := json.MarshalIndent(outreach.Grade(strings.TrimSpace(text)), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(out))
	return nil
}

func reviseCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	draft, err := engine.History().GetDraft(c.Context, core.ID(c.Uint64("draft")))
	if err != nil {
		return fmt.Errorf("failed to load draft %d: %w", c.Uint64("draft"), err)
	}

	result, err := engine.Pipeline().Revise(c.Context, draft, c.String("feedback"))
	if err != nil {
		return err
	}

	printDraft(c.App.Writer, result.Draft)
	return nil
}

func historyCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	var drafts []*core.Draft
	switch {
	case c.String("company") != "":
		drafts, err = engine.History().GetDraftsByCompany(c.Context, c.String("company"))
	case c.Duration("since") > 0:
		now := time.Now()
		drafts, err = engine.History().GetDraftsByDateRange(c.Context, now.Add(-c.Duration("since")), now.Add(time.Second))
	default:
		drafts, err = engine.History().GetRecentDrafts(c.Context, c.Int("limit"))
	}
	if err != nil {
		return err
	}

	if limit := c.Int("limit"); limit > 0 && len(drafts) > limit {
		drafts = drafts[len(drafts)-limit:]
	}

	for _, d := range drafts {
		fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\t%s\t%s\n", d.Id, d.CreatedAt.Local().Format(time.DateTime),
			d.Kind, d.Company, firstLine(d.Subject, d.Body))
	}
	return nil
}

func printDraft(w io.Writer, d *core.Draft) {
	if d.Id != 0 {
		fmt.Fprintf(w, "Draft: %d\n", d.Id)
	}
	if d.Subject != "" {
		fmt.Fprintf(w, "Subject: %s\n\n", d.Subject)
	}
	fmt.Fprintln(w, d.Body)
}

func firstLine(subject, body string) string {
	if subject != "" {
		return subject
	}
	line, _, _ := strings.Cut(body, "\n")
	return line
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
