// apoestratify builds gender-split recall lists balanced on e4 carrier status
// and age from a labelled cohort table.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	apoe "github.com/dsugurtuna/apoe-genotyping-toolkit"
	_ "github.com/dsugurtuna/apoe-genotyping-toolkit/compileinfoprint"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/stratify"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/tabular"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	defaults := stratify.DefaultConfig()
	flagCfg := defaults

	var input, bqTable, project, configPath, outputDir string
	var sheet, year int
	var fixQuotes bool
	flag.StringVar(&input, "input", "", "Cohort table: delimited text (sniffed), or .xls. Local, ~/ and gs:// paths are accepted.")
	flag.BoolVar(&fixQuotes, "fix-quotes", false, "Rewrite backslash-escaped quotes (\\\") in -input as doubled quotes before parsing")
	flag.IntVar(&sheet, "sheet", 0, "(.xls) Zero-based sheet number")
	flag.StringVar(&bqTable, "bigquery", "", "Read the cohort from this BigQuery table (project.dataset.table) instead of -input")
	flag.StringVar(&project, "project", firstEnv("APOE_BQ_PROJECT", "GOOGLE_CLOUD_PROJECT"), "BigQuery billing project. Defaults to $APOE_BQ_PROJECT or $GOOGLE_CLOUD_PROJECT.")
	flag.StringVar(&configPath, "config", "", "TOML study file. Flags given explicitly override it.")
	flag.StringVar(&flagCfg.StudyName, "study", defaults.StudyName, "Study name, also used to name output files")
	flag.IntVar(&flagCfg.TargetFemaleCount, "females", defaults.TargetFemaleCount, "Target number of women")
	flag.IntVar(&flagCfg.TargetMaleCount, "males", defaults.TargetMaleCount, "Target number of men")
	flag.Float64Var(&flagCfg.CarrierFraction, "carrier-fraction", defaults.CarrierFraction, "Fraction of each arm drawn from e4 carriers")
	flag.BoolVar(&flagCfg.ExcludeSecondaryCarriers, "exclude-e2", defaults.ExcludeSecondaryCarriers, "Exclude e2 carriers")
	flag.IntVar(&year, "year", 0, "Reference year for converting birth years to ages. If 0, the current year.")
	flag.StringVar(&outputDir, "output-dir", ".", "Directory for the recall lists and summary")
	flag.Parse()

	if (input == "") == (bqTable == "") {
		flag.PrintDefaults()
		log.Fatalln("Please provide exactly one of -input or -bigquery")
	}

	cfg, err := buildConfig(configPath, flagCfg)
	if err != nil {
		log.Fatalln(err)
	}

	ctx := context.Background()

	var table tabular.Table
	if bqTable != "" {
		table, err = queryCohort(ctx, project, bqTable)
	} else {
		table, err = readCohort(ctx, input, sheet, fixQuotes)
	}
	if err != nil {
		log.Fatalln(err)
	}

	log.WithFields(log.Fields{"rows": table.Len(), "study": cfg.StudyName}).Println("Loaded cohort")

	result, err := stratify.Stratifier{CurrentYear: year}.Stratify(table, cfg)
	var cerr *stratify.ConfigurationError
	if errors.As(err, &cerr) {
		log.WithField("missing", cerr.Missing).Fatalln("The cohort table lacks required columns")
	} else if err != nil {
		log.Fatalln(err)
	}

	paths, err := stratify.ExportRecallLists(result, outputDir)
	if err != nil {
		log.Fatalln(err)
	}
	for _, p := range paths {
		log.Println("Wrote", p)
	}

	fmt.Print(stratify.FormatSummary(result))
}

// buildConfig starts from the TOML file when one is given and lays any
// explicitly set flags over it.
func buildConfig(configPath string, flagCfg stratify.Config) (stratify.Config, error) {
	if configPath == "" {
		return flagCfg, flagCfg.Validate()
	}

	cfg, err := stratify.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "study":
			cfg.StudyName = flagCfg.StudyName
		case "females":
			cfg.TargetFemaleCount = flagCfg.TargetFemaleCount
		case "males":
			cfg.TargetMaleCount = flagCfg.TargetMaleCount
		case "carrier-fraction":
			cfg.CarrierFraction = flagCfg.CarrierFraction
		case "exclude-e2":
			cfg.ExcludeSecondaryCarriers = flagCfg.ExcludeSecondaryCarriers
		}
	})

	return cfg, cfg.Validate()
}

func readCohort(ctx context.Context, input string, sheet int, fixQuotes bool) (tabular.Table, error) {
	if strings.HasSuffix(strings.ToLower(input), ".xls") {
		path, err := apoe.ExpandHome(input)
		if err != nil {
			return tabular.Table{}, err
		}
		return tabular.ReadXLS(path, sheet)
	}

	var client *storage.Client
	if apoe.IsGoogleStorage(input) {
		var err error
		if client, err = storage.NewClient(ctx); err != nil {
			return tabular.Table{}, err
		}
		defer client.Close()
	}

	f, err := apoe.Open(ctx, input, client)
	if err != nil {
		return tabular.Table{}, err
	}
	defer f.Close()

	if fixQuotes {
		return tabular.ReadSniffed(tabular.NewQuoteFixReader(f))
	}

	return tabular.ReadSniffed(f)
}

func queryCohort(ctx context.Context, project, table string) (tabular.Table, error) {
	if project == "" {
		return tabular.Table{}, fmt.Errorf("-project (or $APOE_BQ_PROJECT) is required with -bigquery")
	}

	wbq, err := tabular.NewWrappedBigQuery(ctx, project)
	if err != nil {
		return tabular.Table{}, err
	}
	defer wbq.Close()

	return wbq.QueryTable(tabular.TableQuery(table))
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}

	return ""
}
