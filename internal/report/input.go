package report

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ReadDomains reads a domain list. Files ending in .xlsx are read from their
// first sheet, using the "domain" column when a header names one and the
// first column otherwise. Any other file is one domain per line; blank lines
// and lines starting with # are ignored. Duplicates keep their first position.
func ReadDomains(path string) ([]string, error) {
	var raw []string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		raw, err = readXLSXDomains(path)
	} else {
		raw, err = readLineDomains(path)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, d := range raw {
		d = strings.TrimSpace(d)
		if d == "" || seen[strings.ToLower(d)] {
			continue
		}
		seen[strings.ToLower(d)] = true
		out = append(out, d)
	}
	return out, nil
}

func readLineDomains(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "report: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, eris.Wrapf(sc.Err(), "report: read %s", path)
}

func readXLSXDomains(path string) ([]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("xlsx: %s has no sheets", path)
	}

	rows := f.Sheets[0].Rows
	if len(rows) == 0 {
		return nil, nil
	}

	col, start := 0, 0
	for j, cell := range rows[0].Cells {
		if strings.EqualFold(strings.TrimSpace(cell.String()), "domain") {
			col, start = j, 1
			break
		}
	}

	var out []string
	for _, row := range rows[start:] {
		if row == nil || col >= len(row.Cells) {
			continue
		}
		out = append(out, row.Cells[col].String())
	}
	return out, nil
}
