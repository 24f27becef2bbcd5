package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	apoe "github.com/dsugurtuna/apoe-genotyping-toolkit"
)

// Whitespace is passed as a delimiter to request splitting on runs of spaces
// and tabs, as in PLINK text formats.
const Whitespace rune = 0

// ReadDelimited reads a headed, delimited table. If delim is Whitespace, runs of
// whitespace separate columns. Rows may have fewer columns than the header.
func ReadDelimited(r io.Reader, delim rune) (Table, error) {
	if delim == Whitespace {
		return ReadWhitespace(r, true)
	}

	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	t := Table{}
	for i := 0; ; i++ {
		cols, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return t, fmt.Errorf("line %d: %w", i+1, err)
		}

		if i == 0 {
			t.Header = cols
			continue
		}

		if isBlank(cols) {
			continue
		}

		t.Rows = append(t.Rows, cols)
	}

	if t.Header == nil {
		return t, fmt.Errorf("no header row found")
	}

	return t, nil
}

// ReadSniffed buffers r, determines its delimiter, and reads it.
func ReadSniffed(r io.Reader) (Table, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return Table{}, err
	}

	return ReadDelimited(bytes.NewReader(b), apoe.DetermineDelimiterBytes(b))
}

// ReadWhitespace splits each line on runs of whitespace. When headed is false
// the table has no header and every line is a row.
func ReadWhitespace(r io.Reader, headed bool) (Table, error) {
	t := Table{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Fields(line)
		if len(cols) == 0 {
			continue
		}

		if headed && first {
			t.Header = cols
			first = false
			continue
		}
		first = false

		t.Rows = append(t.Rows, cols)
	}
	if err := scanner.Err(); err != nil {
		return t, err
	}

	if headed && t.Header == nil {
		return t, fmt.Errorf("no header row found")
	}

	return t, nil
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
