package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"driftlab/adapters/memory"
	"driftlab/adapters/openrouter"
	"driftlab/adapters/postgres"
	"driftlab/app"
	"driftlab/domain/core"
	"driftlab/internal/canon"
	"driftlab/internal/compare"
	"driftlab/internal/config"
	"driftlab/internal/export"
	"driftlab/internal/perturb"
	"driftlab/ports"
	"driftlab/ui"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[driftlab] config: %v", err)
	}

	ctx := context.Background()
	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "validate":
		err = runValidate(ctx, cfg, args)
	case "run":
		err = runExperiments(ctx, cfg, args)
	case "report":
		err = runReport(ctx, cfg, args)
	case "serve":
		err = runServe(ctx, cfg, args)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("[driftlab] %s: %v", command, err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: driftlab <command> [flags]

Commands:
  validate   check passage memorization for a model
  run        run the perturbation experiment suite
  report     render a report from stored experiments
  serve      serve experiments and reports over HTTP`)
}

func runValidate(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	model := fs.String("model", "", "model to validate (default from DRIFTLAB_MODEL)")
	suite := fs.String("suite", "minimal", "passage suite: minimal, standard, comprehensive")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, _, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	results, err := svc.ValidateMemorization(ctx, *model, canon.SuiteSize(*suite))
	if err != nil {
		return err
	}

	memorized := 0
	for _, v := range results {
		status := "FAIL"
		if v.Memorized {
			status = "ok"
			memorized++
		}
		fmt.Printf("%-28s %.3f  %s\n", v.Key, v.Score, status)
	}
	fmt.Printf("%d/%d passages memorized\n", memorized, len(results))
	return nil
}

func runExperiments(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	model := fs.String("model", "", "model to test (default from DRIFTLAB_MODEL)")
	passage := fs.String("passage", "hamlet_to_be", "canonical passage key")
	variant := fs.String("variant", "", "single perturbation variant; empty runs the full suite")
	magnitude := fs.Float64("magnitude", 1.0, "perturbation magnitude in [0, 1]")
	xlsx := fs.String("xlsx", "", "optional path for an xlsx export of the last experiment")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, _, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}

	key, err := core.ParsePassageKey(*passage)
	if err != nil {
		return err
	}

	variants := app.Variants()
	if *variant != "" {
		variants = []perturb.ActionType{perturb.ActionType(*variant)}
	}

	var last *app.ExperimentResult
	for _, v := range variants {
		res, err := svc.Run(ctx, app.ExperimentRequest{
			Label:      string(v),
			PassageKey: key,
			Model:      *model,
			Variant:    v,
			Magnitude:  *magnitude,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%-22s control=%.4f modified=%.4f p=%.4g %s\n",
			res.Experiment.Label,
			res.Analysis.Control.Mean, res.Analysis.Modified.Mean,
			res.Analysis.Test.PValue, res.Analysis.Test.EffectLabel)
		last = res
	}

	if *xlsx != "" && last != nil {
		rep := export.ExperimentReport{Experiment: last.Experiment, Analysis: last.Analysis}
		if err := export.WriteWorkbook(*xlsx, rep, last.Trials); err != nil {
			return err
		}
		log.Printf("[driftlab] wrote %s", *xlsx)
	}
	return nil
}

func runReport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	out := fs.String("out", "", "write markdown to this path instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, repo, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}

	exps, err := repo.ListExperiments(ctx)
	if err != nil {
		return err
	}
	reports := make([]export.ExperimentReport, 0, len(exps))
	for _, exp := range exps {
		analysis, err := svc.AnalyzeStored(ctx, exp.ID, compare.MetricMemorization)
		if err != nil {
			log.Printf("[driftlab] skipping %s: %v", exp.ID, err)
			continue
		}
		reports = append(reports, export.ExperimentReport{Experiment: exp, Analysis: analysis})
	}

	md := export.Markdown(reports, time.Now().UTC())
	if *out == "" {
		fmt.Print(md)
		return nil
	}
	return os.WriteFile(*out, []byte(md), 0o644)
}

func runServe(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.String("port", cfg.Server.Port, "listen port")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, repo, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	return ui.NewApp(repo, svc).Start(ui.Config{Port: *port})
}

// buildService wires the model client and the trial store. Without a
// DATABASE_URL results stay in memory for the life of the process.
func buildService(ctx context.Context, cfg *config.Config) (*app.ExperimentService, ports.TrialRepository, error) {
	client, err := openrouter.NewClient(openrouter.Config{
		APIKey:  cfg.Model.OpenRouterKey,
		Timeout: cfg.Model.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}

	var repo ports.TrialRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		pgRepo := postgres.NewTrialRepository(db)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		repo = pgRepo
	} else {
		log.Printf("[driftlab] no DATABASE_URL set, results stay in memory")
		repo = memory.NewTrialRepository()
	}

	return app.NewExperimentService(client, repo, cfg.Experiment, cfg.Model), repo, nil
}
