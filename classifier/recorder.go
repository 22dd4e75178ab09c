package classifier

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Entry is one classification log line. Entries are never rewritten.
type Entry struct {
	Key      string
	Username string
	Comment  string
	Tags     string // encoded classification
}

// Classification decodes the entry's tag string.
func (e Entry) Classification() (Classification, error) {
	c, err := ParseClassification(e.Tags)
	if err != nil {
		var mt *MalformedTagError
		if errors.As(err, &mt) {
			mt.Record = e.Key
		}
		return nil, err
	}
	return c, nil
}

// line renders the on-disk form: key,username,comment,tags followed by a
// space and a newline.
func (e Entry) line() string {
	return e.Key + "," + e.Username + "," + e.Comment + "," + e.Tags + " \n"
}

// Recorder persists classifications and answers history lookups.
type Recorder interface {
	// Lookup returns every entry for key in the order written; none is not an error.
	Lookup(key string) ([]Entry, error)
	Append(e Entry) error
	// Record appends e and returns the normalised entry exactly as stored.
	Record(e Entry) (Entry, error)
	Close() error
}

// prepareEntry validates e and returns the normalised entry that will be
// written. tax may be nil to skip tag membership checks.
func prepareEntry(e Entry, tax *Taxonomy) (Entry, error) {
	e.Key = strings.TrimSpace(e.Key)
	if e.Key == "" {
		return Entry{}, &ValidationError{Field: "key", Reason: "empty"}
	}
	if strings.ContainsAny(e.Key, ",\r\n") {
		return Entry{}, &ValidationError{Field: "key", Reason: "contains a delimiter"}
	}
	e.Username = NormalizeText(e.Username)
	if e.Username == "" {
		return Entry{}, &ValidationError{Field: "username", Reason: "empty"}
	}
	if strings.ContainsAny(e.Username, ",\r\n") {
		return Entry{}, &ValidationError{Field: "username", Reason: "contains a delimiter"}
	}
	e.Comment = SanitizeComment(e.Comment)

	c, err := ParseClassification(e.Tags)
	if err != nil {
		return Entry{}, &ValidationError{Field: "tags", Reason: err.Error()}
	}
	if tax != nil {
		if err := tax.Validate(c); err != nil {
			return Entry{}, err
		}
	}
	for _, cat := range Categories {
		for _, code := range c[cat] {
			if err := checkCode(code); err != nil {
				return Entry{}, &ValidationError{Field: "tags", Reason: err.Error()}
			}
		}
	}
	e.Tags = EncodeClassification(c)
	return e, nil
}

// FileRecorder is the append-only flat-file log.
type FileRecorder struct {
	path string
	tax  *Taxonomy
	mu   sync.Mutex
}

// NewFileRecorder returns a recorder for path. The file is created on the
// first successful append.
func NewFileRecorder(path string, tax *Taxonomy) *FileRecorder {
	return &FileRecorder{path: path, tax: tax}
}

// Path returns the log file location.
func (r *FileRecorder) Path() string { return r.path }

// Append validates e and writes it as one line. Nothing is written when
// validation fails.
func (r *FileRecorder) Append(e Entry) error {
	_, err := r.Record(e)
	return err
}

// Record is Append returning the line as written.
func (r *FileRecorder) Record(e Entry) (Entry, error) {
	e, err := prepareEntry(e, r.tax)
	if err != nil {
		return Entry{}, err
	}
	line := []byte(e.line())

	r.mu.Lock()
	defer r.mu.Unlock()
	if dir := filepath.Dir(r.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Entry{}, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return Entry{}, fmt.Errorf("open classification log: %w", err)
	}
	n, err := f.Write(line)
	if err == nil && n < len(line) {
		err = io.ErrShortWrite
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Entry{}, fmt.Errorf("append classification: %w", err)
	}
	return e, nil
}

// Lookup scans the log for key.
func (r *FileRecorder) Lookup(key string) ([]Entry, error) {
	key = strings.TrimSpace(key)
	all, err := r.Entries()
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range all {
		if e.Key == key {
			out = append(out, e)
		}
	}
	return out, nil
}

// Entries returns the whole log in file order. A missing file is an empty log.
func (r *FileRecorder) Entries() ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.Open(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open classification log: %w", err)
	}
	defer f.Close()
	return ReadLog(f)
}

// Close is a no-op; the file is opened per operation.
func (r *FileRecorder) Close() error { return nil }

// ReadLog parses classification log lines. Blank lines are skipped; a line
// with fewer than four fields is an error.
func ReadLog(rd io.Reader) ([]Entry, error) {
	var out []Entry
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimRight(scanner.Text(), " \r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts := strings.SplitN(text, ",", 4)
		if len(parts) < 4 {
			return nil, fmt.Errorf("classification log line %d: want 4 fields, got %d", n, len(parts))
		}
		out = append(out, Entry{
			Key:      parts[0],
			Username: parts[1],
			Comment:  parts[2],
			Tags:     strings.TrimSpace(parts[3]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan classification log: %w", err)
	}
	return out, nil
}
