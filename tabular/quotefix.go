package tabular

import (
	"bufio"
	"io"
	"strings"
)

// QuoteFixReader rewrites the backslash-escaped quote (\") that some cohort
// exports, notably UK Biobank's, write inside quoted fields into the doubled
// quote ("") that CSV readers expect.
type QuoteFixReader struct {
	r        *bufio.Reader
	leftover *strings.Reader
	err      error
}

func NewQuoteFixReader(r io.Reader) *QuoteFixReader {
	return &QuoteFixReader{r: bufio.NewReader(r), leftover: &strings.Reader{}}
}

func (q *QuoteFixReader) Read(p []byte) (int, error) {
	if q.leftover.Len() == 0 {
		if q.err != nil {
			return 0, q.err
		}

		line, err := q.r.ReadString('\n')
		q.err = err
		q.leftover = strings.NewReader(strings.ReplaceAll(line, `\"`, `""`))

		if q.leftover.Len() == 0 {
			return 0, q.err
		}
	}

	return q.leftover.Read(p)
}
