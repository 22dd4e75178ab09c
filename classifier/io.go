package classifier

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Table is a raw delimited table: a header row and string cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the named column or -1.
func (t Table) Column(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(cleanCell(h), name) {
			return i
		}
	}
	return -1
}

// ReadTable reads a CSV or TSV file (chosen by extension) whose first row is the header.
func ReadTable(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	comma := ','
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		comma = '\t'
	}
	t, err := ParseTable(f, comma)
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// ParseTable reads delimited rows from r. Lines starting with '#' are comments.
func ParseTable(r io.Reader, comma rune) (Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return Table{}, err
	}
	if len(rows) == 0 {
		return Table{}, errors.New("empty file")
	}
	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = cleanCell(cell)
	}
	return Table{Header: header, Rows: rows[1:]}, nil
}

// EncodeTable writes t as CSV to w.
func EncodeTable(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return nil
}

// WriteTable writes t as CSV, replacing path atomically.
func WriteTable(path string, t Table) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create table dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(tmp), err)
	}
	if err := EncodeTable(f, t); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close table: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename table: %w", err)
	}
	return nil
}

// LoadDataset reads and normalises a source table. Every failure is a *DataLoadError.
func LoadDataset(path string, origin Origin) (*Dataset, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	d, err := BuildDataset(path, origin, t)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ParseNameList reads one name per line, ignoring blank lines and '#' comments.
// Only the first whitespace-separated token of a line is kept.
func ParseNameList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open name list: %w", err)
	}
	defer f.Close()
	var out []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(stripComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		name := cleanCell(fields[0])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan name list: %w", err)
	}
	return out, nil
}

// CustomSource names a file of externally measured values.
type CustomSource struct {
	Name string
	Path string
}

// Column returns the merged column name: the part of Name before the first
// underscore followed by the custom suffix.
func (c CustomSource) Column() string {
	prefix := c.Name
	if i := strings.Index(prefix, "_"); i >= 0 {
		prefix = prefix[:i]
	}
	return prefix + CustomSuffix
}

// ParseCustomList reads "<name> <path>" lines. Relative paths resolve against
// the list file's directory.
func ParseCustomList(path string) ([]CustomSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open custom list: %w", err)
	}
	defer f.Close()
	base := filepath.Dir(path)
	var out []CustomSource
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(stripComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("custom list line %d: want \"<name> <path>\"", line)
		}
		p := fields[len(fields)-1]
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		out = append(out, CustomSource{Name: fields[0], Path: p})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan custom list: %w", err)
	}
	return out, nil
}

// ReadCustomValues reads "JNAME value" pairs separated by whitespace.
func ReadCustomValues(path string) (map[string]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open custom values: %w", err)
	}
	defer f.Close()
	values := make(map[string]string)
	var order []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(stripComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		name := cleanCell(fields[0])
		val := ""
		if len(fields) > 1 {
			val = fields[1]
		}
		if _, ok := values[name]; !ok {
			order = append(order, name)
		}
		values[name] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan custom values: %w", err)
	}
	return values, order, nil
}

func stripComment(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return v
}
