package caller

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	apoe "github.com/dsugurtuna/apoe-genotyping-toolkit"
)

// Columns of a PLINK .map file.
const (
	mapChromosome int = iota
	mapVariantID
	mapMorgans
	mapCoordinate
)

type MapRow struct {
	Chromosome string
	VariantID  string // E.g., rsID
	Coordinate uint32
}

// MapReader reads a PLINK .map file one variant at a time.
type MapReader struct {
	file    *os.File
	scanner *bufio.Scanner
	err     error
}

func OpenMap(path string) (*MapReader, error) {
	path, err := apoe.ExpandHome(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return &MapReader{file: file, scanner: bufio.NewScanner(file)}, nil
}

func (m *MapReader) Close() error {
	return m.file.Close()
}

func (m *MapReader) Err() error {
	if m.err != nil {
		return m.err
	}

	return m.scanner.Err()
}

// Read returns the next variant, or nil at the end of the file or on error.
// Blank lines are skipped.
func (m *MapReader) Read() *MapRow {
	for m.err == nil && m.scanner.Scan() {
		cols := strings.Fields(m.scanner.Text())
		if len(cols) == 0 {
			continue
		}
		if len(cols) < mapCoordinate+1 {
			m.err = fmt.Errorf("map line has %d columns, expected 4: %q", len(cols), m.scanner.Text())
			return nil
		}

		coord, err := strconv.ParseUint(cols[mapCoordinate], 10, 32)
		if err != nil {
			m.err = err
			return nil
		}

		return &MapRow{
			Chromosome: cols[mapChromosome],
			VariantID:  cols[mapVariantID],
			Coordinate: uint32(coord),
		}
	}

	return nil
}

// ReadMapOrder returns the variant IDs of a .map file in file order.
func ReadMapOrder(path string) ([]string, error) {
	m, err := OpenMap(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	var ids []string
	for row := m.Read(); row != nil; row = m.Read() {
		ids = append(ids, row.VariantID)
	}

	return ids, m.Err()
}
