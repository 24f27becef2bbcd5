package apoe

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/csimplestring/go-csv/detector"
)

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	if len(delimiters) > 0 {
		return rune(delimiters[0][0])
	}

	return ','
}

// DetermineDelimiterBytes is DetermineDelimiter over an in-memory sample, which
// is how callers that need to re-read the data afterwards should use it.
func DetermineDelimiterBytes(sample []byte) rune {
	// A tab anywhere on the header line wins over commas, which show up inside
	// free-text fields of TSV exports.
	firstLine := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		firstLine = sample[:i]
	}
	if bytes.IndexByte(firstLine, '\t') >= 0 {
		return '\t'
	}

	return DetermineDelimiter(bytes.NewReader(sample))
}

// ParseDelimiter reads a delimiter given on the command line. "" means the
// delimiter should be sniffed and yields 0. "tab", "\t", "comma", "space" and
// "pipe" are accepted by name; anything else must be a single character.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	case "comma":
		return ',', nil
	case "space":
		return ' ', nil
	case "pipe":
		return '|', nil
	}

	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter %q must be a single character", s)
	}

	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
