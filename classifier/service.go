package classifier

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// View is everything a front end needs after one recompute.
type View struct {
	Selection Selection
	Summary   Summary
	// Points are the plotted records: the selection, followed by the whole
	// catalogue when the overlay is on.
	Points []Record
	Status string
}

// Service loads the datasets once and answers filter, history and
// classification requests. Errors from user actions are returned as values
// and rendered with Status; nothing here exits the process.
type Service struct {
	cfgMu sync.RWMutex
	cfg   Config

	store    Store
	tax      *Taxonomy
	recorder Recorder

	logger *zap.Logger
}

// NewService reads the datasets and taxonomy named by cfg and opens the
// configured recorder. A missing taxonomy file falls back to the built-in table.
func NewService(cfg Config, logger *zap.Logger) (*Service, error) {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	primary, err := LoadDataset(cfg.Dataset, OriginPrimary)
	if err != nil {
		return nil, err
	}
	store := Store{Primary: primary}
	if cfg.Catalogue != "" {
		cat, err := LoadDataset(cfg.Catalogue, OriginCatalogue)
		if err != nil {
			return nil, err
		}
		store.Catalogue = cat
	}

	tax, err := LoadTaxonomy(cfg.Taxonomy)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Warn("taxonomy file not found, using built-in tags", zap.String("path", cfg.Taxonomy))
		tax = DefaultTaxonomy()
	case err != nil:
		return nil, err
	}

	rec, err := OpenRecorder(cfg.Log, tax)
	if err != nil {
		return nil, err
	}
	s := NewServiceFrom(store, tax, rec, logger)
	s.cfg = cfg
	return s, nil
}

// NewServiceFrom wires already loaded parts.
func NewServiceFrom(store Store, tax *Taxonomy, rec Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tax == nil {
		tax = DefaultTaxonomy()
	}
	s := &Service{store: store, tax: tax, recorder: rec, logger: logger}
	s.cfg.ApplyDefaults()
	s.log("dataset loaded",
		zap.Int("records", store.Primary.Len()),
		zap.Int("catalogue", store.Catalogue.Len()),
		zap.Strings("fields", store.Primary.Fields()))
	return s
}

// OpenRecorder opens the classification log backend named by cfg.
func OpenRecorder(cfg LogConfig, tax *Taxonomy) (Recorder, error) {
	switch cfg.Backend {
	case BackendSQLite:
		return OpenSQLiteRecorder(cfg.Path, tax)
	case BackendFile, "":
		return NewFileRecorder(cfg.Path, tax), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", cfg.Backend)
	}
}

// Close releases the recorder.
func (s *Service) Close() error {
	if s.recorder != nil {
		return s.recorder.Close()
	}
	return nil
}

// Config returns a copy of the current configuration.
func (s *Service) Config() Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// Store returns the loaded datasets.
func (s *Service) Store() Store { return s.store }

// Taxonomy returns the allowed tags.
func (s *Service) Taxonomy() *Taxonomy { return s.tax }

// Logger returns the service logger.
func (s *Service) Logger() *zap.Logger { return s.logger }

// NewFacets returns a facet state spanning the primary dataset.
func (s *Service) NewFacets() *FacetState {
	return NewFacetState(s.store.Primary)
}

// Recompute runs the filter over the primary dataset and summarises the result.
func (s *Service) Recompute(f Filter, includeCatalogue bool) View {
	sel := Select(s.store.Primary.Records(), f)
	for _, issue := range sel.Issues {
		s.logger.Warn("skipping malformed tags", zap.Error(issue))
	}
	v := View{
		Selection: sel,
		Summary:   Summarize(sel.Records),
		Points:    sel.Records,
	}
	if includeCatalogue && s.store.Catalogue.Len() > 0 {
		points := make([]Record, 0, len(sel.Records)+s.store.Catalogue.Len())
		points = append(points, sel.Records...)
		v.Points = append(points, s.store.Catalogue.Records()...)
	}
	v.Status = fmt.Sprintf("%d of %d pulsars selected", sel.Len(), s.store.Primary.Len())
	if len(sel.Issues) > 0 {
		v.Status += fmt.Sprintf(" (%d with unreadable tags)", len(sel.Issues))
	}
	s.logger.Debug("recompute", zap.Int("selected", sel.Len()), zap.Bool("catalogue", includeCatalogue))
	return v
}

// Lookup finds a pulsar in the primary dataset, then the catalogue.
func (s *Service) Lookup(jname string) (Record, bool) {
	if r, ok := s.store.Primary.Lookup(jname); ok {
		return r, true
	}
	return s.store.Catalogue.Lookup(jname)
}

// History returns the prior classifications of a pulsar.
func (s *Service) History(key string) ([]Entry, error) {
	if s.recorder == nil {
		return nil, errors.New("no classification log configured")
	}
	return s.recorder.Lookup(key)
}

// Classify encodes per-category labels through the taxonomy and appends the entry.
func (s *Service) Classify(key, username, comment string, labels map[Category][]string) (Entry, error) {
	c, err := s.tax.Encode(labels)
	if err != nil {
		return Entry{}, err
	}
	return s.ClassifyTags(key, username, comment, EncodeClassification(c))
}

// ClassifyTags appends an entry whose tags are already encoded.
func (s *Service) ClassifyTags(key, username, comment, tags string) (Entry, error) {
	if s.recorder == nil {
		return Entry{}, errors.New("no classification log configured")
	}
	e := Entry{Key: key, Username: username, Comment: comment, Tags: tags}
	saved, err := s.recorder.Record(e)
	if err != nil {
		s.logger.Warn("classification refused", zap.String("jname", key), zap.Error(err))
		return Entry{}, err
	}
	s.log("classification saved", zap.String("jname", saved.Key), zap.String("user", saved.Username), zap.String("tags", saved.Tags))
	return saved, nil
}

// Status turns an error from a user action into a status-line message.
func Status(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	var mt *MalformedTagError
	var dl *DataLoadError
	switch {
	case errors.As(err, &ve):
		return "Not saved: " + ve.Error()
	case errors.As(err, &mt):
		return "Unreadable tags: " + mt.Error()
	case errors.As(err, &dl):
		return "Could not load data: " + dl.Error()
	default:
		return "Error: " + strings.TrimSpace(err.Error())
	}
}

func (s *Service) log(msg string, fields ...zap.Field) {
	if s.logger != nil {
		s.logger.Info(msg, fields...)
	}
}
