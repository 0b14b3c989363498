package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// catalog holds the raw columns of a point file. Optional columns are nil
// when the file does not carry them.
type catalog struct {
	x, y   []float64
	k      []float64
	g1, g2 []float64
	w      []float64
}

func (c *catalog) len() int { return len(c.x) }

// payloadColumns is the number of value columns after x and y.
func payloadColumns(kind string) (int, error) {
	switch kind {
	case "count":
		return 0, nil
	case "scalar":
		return 1, nil
	case "vector":
		return 2, nil
	default:
		return 0, fmt.Errorf("unknown payload %q (want count, scalar or vector)", kind)
	}
}

// readCatalog parses one point per line. Fields are separated by commas,
// tabs or spaces; blank lines and lines starting with '#' are skipped. A
// line holds x y, then the payload columns, then an optional weight. Either
// every line carries a weight or none does.
func readCatalog(r io.Reader, kind string) (*catalog, error) {
	nv, err := payloadColumns(kind)
	if err != nil {
		return nil, err
	}
	want := 2 + nv

	cat := &catalog{}
	weighted := -1
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) != want && len(fields) != want+1 {
			return nil, fmt.Errorf("line %d: expected %d or %d columns, got %d", lineNo, want, want+1, len(fields))
		}
		hasWeight := len(fields) == want+1
		switch {
		case weighted < 0:
			weighted = boolToInt(hasWeight)
		case weighted != boolToInt(hasWeight):
			return nil, fmt.Errorf("line %d: weight column present on some lines only", lineNo)
		}

		vals := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", lineNo, i+1, err)
			}
			vals[i] = v
		}
		cat.x = append(cat.x, vals[0])
		cat.y = append(cat.y, vals[1])
		switch nv {
		case 1:
			cat.k = append(cat.k, vals[2])
		case 2:
			cat.g1 = append(cat.g1, vals[2])
			cat.g2 = append(cat.g2, vals[3])
		}
		if hasWeight {
			cat.w = append(cat.w, vals[want])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return cat, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
