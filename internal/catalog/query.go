package catalog

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/fatjet-analysis/condorctl/internal/common/condorerrors"
)

// Fields a query term may refer to. They double as SQLite column names of the datasets table.
const (
	FieldName       = "name"
	FieldSample     = "sample"
	FieldSubprocess = "subprocess"
	FieldGeneration = "generation"
)

var queryFields = map[string]bool{
	FieldName:       true,
	FieldSample:     true,
	FieldSubprocess: true,
	FieldGeneration: true,
}

// Term requires Field of a dataset to match the glob Pattern.
type Term struct {
	Field   string
	Pattern string

	glob *regexp.Regexp
}

// Query is a conjunction of terms. The zero Query matches everything.
type Query struct {
	Terms []Term
}

// ParseQuery parses whitespace or comma separated terms of the form field=glob. A term without
// a field is matched against the dataset name. Globs follow SQLite GLOB, so the file backend
// matches exactly what the SQLite backend does: see compileGlob.
func ParseQuery(q string) (Query, error) {
	rv := Query{}
	words := strings.FieldsFunc(q, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	for _, word := range words {
		term := Term{Field: FieldName, Pattern: word}
		if field, pattern, ok := strings.Cut(word, "="); ok {
			term = Term{Field: strings.ToLower(field), Pattern: pattern}
		}
		if !queryFields[term.Field] {
			return Query{}, errors.WithStack(&condorerrors.ErrInvalidArgument{
				Name:    "query",
				Value:   word,
				Message: "unknown field " + term.Field + "; use name, sample, subprocess or generation",
			})
		}
		glob, err := compileGlob(term.Pattern)
		if err != nil {
			return Query{}, errors.WithStack(&condorerrors.ErrInvalidArgument{
				Name:    "query",
				Value:   word,
				Message: "malformed pattern: " + err.Error(),
			})
		}
		term.glob = glob
		rv.Terms = append(rv.Terms, term)
	}
	return rv, nil
}

// Matches reports whether every term matches d.
func (q Query) Matches(d *Dataset) bool {
	for _, term := range q.Terms {
		if !term.matches(fieldValue(d, term.Field)) {
			return false
		}
	}
	return true
}

func (t Term) matches(value string) bool {
	if t.glob == nil {
		glob, err := compileGlob(t.Pattern)
		if err != nil {
			return false
		}
		t.glob = glob
	}
	return t.glob.MatchString(value)
}

func fieldValue(d *Dataset, field string) string {
	switch field {
	case FieldSample:
		return d.Sample
	case FieldSubprocess:
		return d.Subprocess
	case FieldGeneration:
		return d.Generation
	default:
		return d.Name
	}
}
