// Package caller reads per-sample genotypes for rs429358 and rs7412 from
// common genotyping formats and resolves each sample's APOE diplotype.
package caller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/diplotype"
	"github.com/sirupsen/logrus"
)

var (
	ErrMissingColumns = errors.New("missing columns in input")
	ErrUnknownFormat  = errors.New("unknown input format")
)

// Logger receives progress messages from the readers. Replace it to silence
// or redirect them.
var Logger logrus.FieldLogger = logrus.StandardLogger()

// Options control how inputs are read. Not every option applies to every
// format.
type Options struct {
	Resolver diplotype.Resolver

	// Header names in delimited files. Matching is case-insensitive.
	SampleColumn   string
	RS429358Column string
	RS7412Column   string
	// Delimiter for delimited files. Zero means sniff it.
	Delimiter rune

	// MapPath is a PLINK .map file giving the SNP order of a PED file.
	MapPath string

	// Assembly is "37" or "38", used to find the SNPs by position in VCFs
	// that lack rsIDs.
	Assembly string

	// BGIPath defaults to the BGEN path plus ".bgi".
	BGIPath string
	// SamplePath is an Oxford .sample file naming the BGEN samples.
	SamplePath string
	// MinProbability is the genotype probability needed for a hard call.
	MinProbability float64

	// Storage is needed only for gs:// inputs.
	Storage *storage.Client
}

func DefaultOptions() Options {
	return Options{
		SampleColumn:   "IID",
		RS429358Column: diplotype.RS429358,
		RS7412Column:   diplotype.RS7412,
		Assembly:       "37",
		MinProbability: 0.9,
	}
}

// Format is one supported input type.
type Format struct {
	Description string
	Call        func(ctx context.Context, path string, opts Options) ([]Result, error)
}

var Formats = map[string]Format{
	"csv": {
		Description: "delimited text with a header and one genotype column per SNP",
		Call:        CallCSV,
	},
	"ped": {
		Description: "PLINK .ped with the two SNPs extracted",
		Call:        CallPED,
	},
	"raw": {
		Description: "PLINK --recode A allele dosages",
		Call:        CallRaw,
	},
	"vcf": {
		Description: "VCF, optionally compressed, located by rsID or chr19 position",
		Call:        CallVCF,
	},
	"bgen": {
		Description: "BGEN with a .bgi index, hard-called from genotype probabilities",
		Call:        CallBGEN,
	},
}

// FormatNames lists the registered formats, sorted.
func FormatNames() string {
	names := make([]string, 0, len(Formats))
	for name := range Formats {
		names = append(names, name)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}

// Call reads path as the named format.
func Call(ctx context.Context, format, path string, opts Options) ([]Result, error) {
	f, exists := Formats[strings.ToLower(format)]
	if !exists {
		return nil, fmt.Errorf("%w %q. Valid formats include: %s", ErrUnknownFormat, format, FormatNames())
	}

	results, err := f.Call(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	Logger.WithField("input", path).Debugf("Called %d samples", len(results))

	return results, nil
}
