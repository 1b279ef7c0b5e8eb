package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/poiesic/coldmail"
	"github.com/poiesic/coldmail/config"
	"github.com/poiesic/coldmail/core"
	"github.com/poiesic/coldmail/reembed"
)

var templates = []string{
	"Subject: Scaling your data platform\n\nHi {name},\n\nI noticed your team recently expanded its analytics offering. We help data platforms cut ingestion costs while keeping query latency flat. Would a short call next week make sense?\n\nBest,\n{sender}",
	"Subject: Congrats on the funding round\n\nHi {name},\n\nCongratulations on closing your latest round. Teams at this stage usually feel hiring pressure first. We place senior engineers in under three weeks. Open to a quick chat?\n\nCheers,\n{sender}",
	"Subject: Security reviews without the wait\n\nHi {name},\n\nEnterprise buyers keep asking fintech vendors for SOC 2 evidence before signing. Our platform automates evidence collection so reviews close in days. Worth fifteen minutes?\n\nThanks,\n{sender}",
	"Subject: Helping clinics reach more patients\n\nHi {name},\n\nYour telehealth work caught my eye. We help healthcare providers reduce no-shows with automated reminders that integrate with existing EHR systems. Could I share a short case study?\n\nRegards,\n{sender}",
	"Subject: Faster checkout for your store\n\nHi {name},\n\nI saw your e-commerce brand launched a new product line. Our checkout widget lifts conversion by removing redirect steps. Happy to set up a free trial if useful.\n\nBest,\n{sender}",
	"Subject: Logistics visibility for growing fleets\n\nHi {name},\n\nSupply chain teams tell us their biggest blind spot is last-mile tracking. We give fleets real-time location and ETA accuracy across carriers. Interested in a demo?\n\nBest,\n{sender}",
	"Subject: Cutting cloud spend\n\nHi {name},\n\nMost infrastructure teams we meet overspend on idle compute. Our tooling right-sizes Kubernetes workloads automatically. Would you like a free cost assessment?\n\nThanks,\n{sender}",
	"Subject: Partnering on climate reporting\n\nHi {name},\n\nYour sustainability commitments stood out. We help energy companies produce audit-ready emissions reports from operational data. Could we explore a pilot together?\n\nKind regards,\n{sender}",
	"Subject: Developer onboarding in a day\n\nHi {name},\n\nDeveloper tools companies often lose weeks onboarding new users. Our interactive docs platform turns your API reference into guided tutorials. Open to a walkthrough?\n\nBest,\n{sender}",
	"Subject: Better lead scoring for your sales team\n\nHi {name},\n\nI read about your new go-to-market push. We build lead scoring models from your CRM history so reps focus on accounts that close. Worth a conversation?\n\nCheers,\n{sender}",
}

var sample = core.CompanyRecord{
	CompanyName:        "Acme Analytics",
	Description:        "Acme Analytics builds a managed data platform for mid-market teams.",
	CompanyOverview:    "Founded in 2019, Acme Analytics helps companies centralize product and revenue data.",
	IndustryCategories: []string{"Data Infrastructure", "Analytics", "SaaS"},
	WebsiteSummary:     "Acme offers real-time dashboards, warehouse sync and usage-based pricing.",
	News: core.News{Items: []core.NewsItem{
		{NewsDate: "2025-03-04", Title: "Acme raises Series B", Summary: "Acme Analytics closed a $40M Series B to expand its ingestion engine."},
		{Date: "2025-01-15", Title: "New streaming connector", Summary: "Acme launched a streaming connector for event data."},
	}},
	FounderInfo: map[string]core.Founder{
		"Jane Doe": {WikipediaSummary: "Jane Doe is a data engineer and former infrastructure lead."},
	},
}

var (
	outDir     = flag.String("out", "data", "directory to write sample files into")
	configFile = flag.String("config", "", "configuration file used when building the store")
	build      = flag.Bool("build", false, "embed the sample corpus and write the template store")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// writeSamples writes the template corpus and a sample company file to dir.
func writeSamples(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	corpusPath := filepath.Join(dir, "email_templates.json")
	if err := reembed.WriteCorpus(corpusPath, templates); err != nil {
		return "", err
	}

	companies := map[string]core.CompanyRecord{core.Slug(sample.CompanyName): sample}
	data, err := json.MarshalIndent(companies, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "companies.json"), data, 0o644); err != nil {
		return "", err
	}
	return corpusPath, nil
}

func main() {
	_ = godotenv.Load()

	corpusPath, err := writeSamples(*outDir)
	if err != nil {
		panic(err)
	}
	slog.Info("wrote samples", "dir", *outDir, "templates", len(templates))

	if !*build {
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(err)
	}
	cfg.Store = filepath.Join(*outDir, "email_embeddings.json")

	engine, err := coldmail.NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	corpus, err := reembed.LoadCorpus(corpusPath)
	if err != nil {
		panic(err)
	}
	store, err := engine.BuildStore(context.Background(), corpus, os.Stdout)
	if err != nil {
		panic(err)
	}
	slog.Info("built store", "path", cfg.Store, "entries", len(store.Entries), "model", store.Model)
}
