// apoecall resolves APOE diplotypes for every sample in a genotype file and
// writes one row per sample.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	apoe "github.com/dsugurtuna/apoe-genotyping-toolkit"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/caller"
	_ "github.com/dsugurtuna/apoe-genotyping-toolkit/compileinfoprint"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/diplotype"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	opts := caller.DefaultOptions()

	var input, format, output, delimiter string
	var extended, summary, verbose bool
	flag.StringVar(&input, "input", "", "Genotype file. Local paths, ~/ paths and gs:// URIs are accepted; gzip, bzip2, xz and zip are decompressed.")
	flag.StringVar(&format, "format", "csv", "Input format: "+caller.FormatNames())
	flag.StringVar(&output, "output", "", "Results CSV. If blank, results go to stdout.")
	flag.BoolVar(&summary, "summary", false, "Print cohort counts and Hardy-Weinberg P-values to stderr")
	flag.BoolVar(&extended, "e1", false, "Resolve the rare e1 haplotype and report the double heterozygote as ambiguous")
	flag.BoolVar(&verbose, "verbose", false, "Log reader progress")

	flag.StringVar(&opts.SampleColumn, "sample-col", opts.SampleColumn, "(csv) Sample ID column")
	flag.StringVar(&opts.RS429358Column, "rs429358-col", opts.RS429358Column, "(csv) rs429358 genotype column")
	flag.StringVar(&opts.RS7412Column, "rs7412-col", opts.RS7412Column, "(csv) rs7412 genotype column")
	flag.StringVar(&delimiter, "delimiter", "", "(csv) Column delimiter, e.g. , or tab. If blank, it is sniffed.")
	flag.StringVar(&opts.MapPath, "map", "", "(ped) PLINK .map file giving the SNP order")
	flag.StringVar(&opts.Assembly, "assembly", opts.Assembly, "(vcf, bgen) Genome build for locating SNPs by position: 37 or 38")
	flag.StringVar(&opts.BGIPath, "bgi", "", "(bgen) Path to the BGEN index. If blank, will assume it's the BGEN path suffixed with .bgi")
	flag.StringVar(&opts.SamplePath, "sample", "", "(bgen) Oxford .sample file naming the BGEN samples")
	flag.Float64Var(&opts.MinProbability, "min-prob", opts.MinProbability, "(bgen) Genotype probability needed for a hard call")
	flag.Parse()

	if input == "" {
		flag.PrintDefaults()
		log.Fatalln("Please provide -input")
	}

	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	var err error
	if opts.Delimiter, err = apoe.ParseDelimiter(delimiter); err != nil {
		log.Fatalln(err)
	}
	opts.Resolver = diplotype.Resolver{Extended: extended}

	ctx := context.Background()
	if apoe.IsGoogleStorage(input, opts.BGIPath, opts.SamplePath) {
		client, err := storage.NewClient(ctx)
		if err != nil {
			log.Fatalln(err)
		}
		defer client.Close()
		opts.Storage = client
	}

	results, err := caller.Call(ctx, format, input, opts)
	if err != nil {
		log.Fatalln(err)
	}

	log.WithFields(log.Fields{"input": input, "samples": len(results)}).Println("Called APOE diplotypes")

	if err := writeResults(output, results); err != nil {
		log.Fatalln(err)
	}

	if summary {
		fmt.Fprint(os.Stderr, caller.FormatSummary(caller.Summarise(results)))
	}
}

func writeResults(output string, results []caller.Result) error {
	var w io.Writer = os.Stdout
	if output != "" {
		path, err := apoe.ExpandHome(output)
		if err != nil {
			return err
		}

		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	return caller.WriteResults(w, results)
}
