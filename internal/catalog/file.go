package catalog

import (
	"context"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/fatjet-analysis/condorctl/internal/common/condorerrors"
)

// FileCatalog serves datasets from a YAML or JSON document loaded once at construction.
type FileCatalog struct {
	path     string
	document *Document
}

// NewFileCatalog loads the document at path. A leading ~ is expanded to the user's home directory.
func NewFileCatalog(path string) (*FileCatalog, error) {
	document, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return &FileCatalog{path: path, document: document}, nil
}

// LoadDocument reads and decodes a YAML or JSON catalog document.
func LoadDocument(path string) (*Document, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error expanding catalog path %s", path)
	}
	b, err := os.ReadFile(expanded)
	if os.IsNotExist(err) {
		return nil, errors.WithStack(&condorerrors.ErrNotFound{Type: "catalog", Value: expanded})
	} else if err != nil {
		return nil, errors.Wrapf(err, "error reading catalog %s", expanded)
	}
	document := &Document{}
	if err := yaml.Unmarshal(b, document); err != nil {
		return nil, errors.Wrapf(err, "failed to parse catalog %s", expanded)
	}
	return document, nil
}

// FetchEntries returns the matching datasets in document order. Matches failing Validate are an
// error, so the generator never sees a dataset the SQLite import would have refused.
func (c *FileCatalog) FetchEntries(_ context.Context, category string, query string) ([]*Dataset, error) {
	q, err := ParseQuery(query)
	if err != nil {
		return nil, err
	}
	rv := make([]*Dataset, 0)
	for i := range c.document.Datasets {
		d := c.document.Datasets[i]
		if d.Category != category || !q.Matches(&d) {
			continue
		}
		rv = append(rv, &d)
	}
	if err := Validate(rv); err != nil {
		return nil, errors.WithMessagef(err, "catalog %s holds invalid datasets", c.path)
	}
	return rv, nil
}

func (c *FileCatalog) Sample(_ context.Context, name string) (*Sample, error) {
	for _, s := range c.document.Samples {
		if s.Name == name {
			sample := s
			return &sample, nil
		}
	}
	return nil, sampleNotFound(name)
}

func (c *FileCatalog) Close() error {
	return nil
}
