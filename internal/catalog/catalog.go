// Package catalog resolves a category and a query into the datasets to generate jobs for.
//
// Two backends exist: a YAML/JSON document on disk, and an SQLite database that a document
// can be imported into. Both implement Catalog and answer queries identically.
package catalog

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/fatjet-analysis/condorctl/internal/common/condorerrors"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Sample is the physics sample a dataset belongs to.
type Sample struct {
	Name string `json:"name"`
	// True for collision data, false for simulation.
	Data bool `json:"data"`
	// Optional filter handed to the analysis executable.
	Mask string `json:"mask,omitempty"`
}

// Dataset is one logical group of input files. Files and Events are parallel: Events[i] is the
// number of events in Files[i].
type Dataset struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Subprocess string   `json:"subprocess"`
	Generation string   `json:"generation"`
	Sample     string   `json:"sample"`
	Files      []string `json:"files"`
	Events     []int    `json:"ns"`
}

// Document is the on-disk layout of a file catalog, and the input of Import.
type Document struct {
	Samples  []Sample  `json:"samples"`
	Datasets []Dataset `json:"datasets"`
}

type Catalog interface {
	// FetchEntries returns the datasets of category matching query, in catalog order.
	FetchEntries(ctx context.Context, category string, query string) ([]*Dataset, error)
	// Sample returns the sample with the given name.
	Sample(ctx context.Context, name string) (*Sample, error)
	Close() error
}

// Open returns the catalog backend named by backend, reading from path.
func Open(ctx context.Context, backend string, path string) (Catalog, error) {
	switch backend {
	case BackendFile:
		return NewFileCatalog(path)
	case BackendSQLite:
		return OpenSQLCatalog(ctx, path)
	default:
		return nil, errors.WithStack(&condorerrors.ErrInvalidArgument{
			Name:    "catalog.backend",
			Value:   backend,
			Message: fmt.Sprintf("must be one of %s, %s", BackendFile, BackendSQLite),
		})
	}
}

// Validate checks the invariants the job generator relies on and reports every violation at once.
func Validate(datasets []*Dataset) error {
	var result *multierror.Error
	for i, d := range datasets {
		if d.Name == "" {
			result = multierror.Append(result, &condorerrors.ErrInvalidArgument{
				Name:    "name",
				Value:   d.Name,
				Message: fmt.Sprintf("dataset %d has no name", i),
			})
			continue
		}
		if d.Subprocess == "" || d.Generation == "" {
			result = multierror.Append(result, &condorerrors.ErrInvalidArgument{
				Name:    "subprocess/generation",
				Value:   d.Subprocess + "/" + d.Generation,
				Message: fmt.Sprintf("dataset %s needs both a subprocess and a generation label", d.Name),
			})
		}
		if len(d.Files) != len(d.Events) {
			result = multierror.Append(result, &condorerrors.ErrInvalidArgument{
				Name:    "ns",
				Value:   fmt.Sprintf("%d entries", len(d.Events)),
				Message: fmt.Sprintf("dataset %s has %d files", d.Name, len(d.Files)),
			})
		}
		for j, n := range d.Events {
			if n < 0 {
				result = multierror.Append(result, &condorerrors.ErrInvalidArgument{
					Name:    "ns",
					Value:   fmt.Sprintf("%d", n),
					Message: fmt.Sprintf("dataset %s has a negative event count at position %d", d.Name, j),
				})
				break
			}
		}
	}
	return result.ErrorOrNil()
}

func sampleNotFound(name string) error {
	return errors.WithStack(&condorerrors.ErrNotFound{Type: "sample", Value: name})
}
