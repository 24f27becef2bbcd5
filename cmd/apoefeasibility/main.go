// apoefeasibility counts how many genotyped participants a study targeting
// particular APOE diplotypes could recruit.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	apoe "github.com/dsugurtuna/apoe-genotyping-toolkit"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/caller"
	_ "github.com/dsugurtuna/apoe-genotyping-toolkit/compileinfoprint"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/feasibility"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	callOpts := caller.DefaultOptions()
	feasOpts := feasibility.Options{}

	var input, genotypes, targets, exclude, delimiter string
	flag.StringVar(&input, "input", "", "Results CSV written by apoecall")
	flag.StringVar(&genotypes, "genotypes", "", "Genotype CSV to call first, instead of -input")
	flag.StringVar(&targets, "targets", "", "Comma-separated diplotypes that count as eligible, e.g. e3/e4,e4/e4. If blank, every diplotype not excluded counts.")
	flag.StringVar(&exclude, "exclude", "", "Comma-separated diplotypes to exclude, e.g. e2/e2,e2/e3,e2/e4")
	flag.BoolVar(&feasOpts.KeepIndeterminate, "keep-indeterminate", false, "Do not exclude samples whose diplotype could not be resolved")
	flag.StringVar(&feasOpts.Study, "study", "Unnamed Study", "Study name for the report")
	flag.StringVar(&feasOpts.Notes, "notes", "", "Free text appended to the report")
	flag.StringVar(&callOpts.SampleColumn, "sample-col", callOpts.SampleColumn, "(-genotypes) Sample ID column")
	flag.StringVar(&callOpts.RS429358Column, "rs429358-col", callOpts.RS429358Column, "(-genotypes) rs429358 genotype column")
	flag.StringVar(&callOpts.RS7412Column, "rs7412-col", callOpts.RS7412Column, "(-genotypes) rs7412 genotype column")
	flag.StringVar(&delimiter, "delimiter", "", "(-genotypes) Column delimiter. If blank, it is sniffed.")
	flag.Parse()

	if (input == "") == (genotypes == "") {
		flag.PrintDefaults()
		log.Fatalln("Please provide exactly one of -input or -genotypes")
	}

	var err error
	if callOpts.Delimiter, err = apoe.ParseDelimiter(delimiter); err != nil {
		log.Fatalln(err)
	}
	feasOpts.Targets = splitList(targets)
	feasOpts.Exclude = splitList(exclude)

	ctx := context.Background()
	var client *storage.Client
	if apoe.IsGoogleStorage(input, genotypes) {
		if client, err = storage.NewClient(ctx); err != nil {
			log.Fatalln(err)
		}
		defer client.Close()
	}
	callOpts.Storage = client

	var results []caller.Result
	if genotypes != "" {
		results, err = caller.CallCSV(ctx, genotypes, callOpts)
	} else {
		results, err = readResults(ctx, input, client)
	}
	if err != nil {
		log.Fatalln(err)
	}

	log.WithField("samples", len(results)).Println("Loaded APOE results")

	fmt.Println(feasibility.FormatReport(feasibility.Estimate(results, feasOpts)))
}

func readResults(ctx context.Context, path string, client *storage.Client) ([]caller.Result, error) {
	f, err := apoe.Open(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return caller.ReadResults(f)
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}
