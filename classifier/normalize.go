package classifier

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText performs Unicode normalization and trims whitespace.
func NormalizeText(text string) string {
	normed := norm.NFKC.String(text)
	normed = strings.TrimSpace(normed)
	// Collapse internal control characters except newlines.
	normed = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
	return normed
}

// SanitizeComment keeps only the letters and digits of a free-text comment
// so it can sit in a comma-delimited log line. Whitespace is removed like any
// other punctuation. An empty result becomes the NA sentinel.
func SanitizeComment(comment string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, norm.NFKC.String(comment))
	if cleaned == "" {
		return SentinelNA
	}
	return cleaned
}

var missingMarkers = map[string]struct{}{
	"":     {},
	"*":    {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"None": {},
	"null": {},
}

func isMissing(cell string) bool {
	_, ok := missingMarkers[strings.TrimSpace(cell)]
	return ok
}

func normalizeString(cell, sentinel string) string {
	if isMissing(cell) {
		return sentinel
	}
	return NormalizeText(cell)
}

// parseNumber reads a numeric cell; missing or unparsable cells become 0.
// ParseFloat accepts any spelling of NaN, which counts as missing.
func parseNumber(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if isMissing(cell) {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Style is the presentation assigned to a record at load time.
type Style struct {
	Color string
	Alpha float64
	Size  float64
}

var (
	styleMeasured   = Style{Color: "#3498db", Alpha: 0.9, Size: 9}
	styleUnmeasured = Style{Color: "grey", Alpha: 0.25, Size: 5}
	styleCatalogue  = Style{Color: "#7f8c8d", Alpha: 0.6, Size: 7}
)

func styleFor(origin Origin, dm float64) Style {
	if origin == OriginCatalogue {
		return styleCatalogue
	}
	if dm > 0 {
		return styleMeasured
	}
	return styleUnmeasured
}

// normalizeRow converts one raw table row into a Record. It runs once per row
// at load time; the returned record is never mutated afterwards.
func normalizeRow(cols columnIndex, row []string, numeric []string, origin Origin) Record {
	cell := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}
	rec := Record{
		JName:    normalizeString(cell("JNAME"), SentinelNA),
		BName:    normalizeString(cell("BNAME"), SentinelNA),
		RAJ:      normalizeString(cell("RAJ"), SentinelNA),
		DECJ:     normalizeString(cell("DECJ"), SentinelNA),
		Assoc:    normalizeString(cell("ASSOC"), SentinelNA),
		Type:     normalizeString(cell("TYPE"), SentinelNA),
		BinComp:  normalizeString(cell("BINCOMP"), SentinelNA),
		Category: normalizeString(cell("CATEGORY"), SentinelUnclassified),
		Comments: normalizeString(cell("COMMENTS"), SentinelNA),
		Values:   make(map[string]float64, len(numeric)),
		Origin:   origin,
	}
	var rawDM float64
	for _, name := range numeric {
		raw, _ := parseNumber(cell(name))
		if name == "DM" {
			rawDM = raw
		}
		spec := LookupField(name)
		stored, sign := spec.Forward(raw)
		rec.Values[name] = stored
		if spec.Signed {
			if rec.Signs == nil {
				rec.Signs = make(map[string]float64)
			}
			rec.Signs[name] = sign
		}
	}
	style := styleFor(origin, rawDM)
	rec.Color, rec.Alpha, rec.Size = style.Color, style.Alpha, style.Size
	return rec
}
