package catalog

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const (
	samplesTable  = "samples"
	datasetsTable = "datasets"
	filesTable    = "files"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS samples (
		name TEXT PRIMARY KEY,
		data BOOLEAN NOT NULL DEFAULT 0,
		mask TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS datasets (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL UNIQUE,
		category   TEXT NOT NULL,
		subprocess TEXT NOT NULL,
		generation TEXT NOT NULL,
		sample     TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS files (
		dataset_id INTEGER NOT NULL REFERENCES datasets(id),
		position   INTEGER NOT NULL,
		path       TEXT NOT NULL,
		events     INTEGER NOT NULL,
		PRIMARY KEY (dataset_id, position)
	)`,
}

type sampleRow struct {
	Name string `db:"name"`
	Data bool   `db:"data"`
	Mask string `db:"mask"`
}

type datasetRow struct {
	Id         int64  `db:"id" goqu:"skipinsert"`
	Name       string `db:"name"`
	Category   string `db:"category"`
	Subprocess string `db:"subprocess"`
	Generation string `db:"generation"`
	Sample     string `db:"sample"`
}

type fileRow struct {
	DatasetId int64  `db:"dataset_id"`
	Position  int    `db:"position"`
	Path      string `db:"path"`
	Events    int    `db:"events"`
}

// SQLCatalog serves datasets from an SQLite database. Queries are built with goqu and
// patterns are evaluated by SQLite's GLOB operator.
type SQLCatalog struct {
	sqlDB *sql.DB
	db    *goqu.Database
}

// OpenSQLCatalog opens (creating if needed) the SQLite database at path and makes sure the schema exists.
func OpenSQLCatalog(ctx context.Context, path string) (*SQLCatalog, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error expanding catalog path %s", path)
	}
	sqlDB, err := sql.Open("sqlite", expanded)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening catalog database %s", expanded)
	}
	// SQLite allows a single writer; a single connection also keeps ":memory:" databases coherent.
	sqlDB.SetMaxOpenConns(1)

	c := &SQLCatalog{sqlDB: sqlDB, db: goqu.New("sqlite3", sqlDB)}
	for _, statement := range schema {
		if _, err := c.db.ExecContext(ctx, statement); err != nil {
			_ = sqlDB.Close()
			return nil, errors.Wrapf(err, "error creating catalog schema in %s", expanded)
		}
	}
	log.Debugf("opened catalog database %s", expanded)
	return c, nil
}

func (c *SQLCatalog) FetchEntries(ctx context.Context, category string, query string) ([]*Dataset, error) {
	q, err := ParseQuery(query)
	if err != nil {
		return nil, err
	}

	where := []exp.Expression{goqu.C("category").Eq(category)}
	for _, term := range q.Terms {
		// term.Field is one of the known query fields, which are also column names.
		where = append(where, goqu.L("? GLOB ?", goqu.C(term.Field), term.Pattern))
	}

	var rows []datasetRow
	err = c.db.From(datasetsTable).
		Prepared(true).
		Where(where...).
		Order(goqu.C("id").Asc()).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, errors.Wrapf(err, "error querying datasets of category %s", category)
	}

	rv := make([]*Dataset, 0, len(rows))
	for _, row := range rows {
		var files []fileRow
		err := c.db.From(filesTable).
			Prepared(true).
			Where(goqu.C("dataset_id").Eq(row.Id)).
			Order(goqu.C("position").Asc()).
			ScanStructsContext(ctx, &files)
		if err != nil {
			return nil, errors.Wrapf(err, "error querying files of dataset %s", row.Name)
		}
		d := &Dataset{
			Name:       row.Name,
			Category:   row.Category,
			Subprocess: row.Subprocess,
			Generation: row.Generation,
			Sample:     row.Sample,
			Files:      make([]string, len(files)),
			Events:     make([]int, len(files)),
		}
		for i, f := range files {
			d.Files[i] = f.Path
			d.Events[i] = f.Events
		}
		rv = append(rv, d)
	}
	return rv, nil
}

func (c *SQLCatalog) Sample(ctx context.Context, name string) (*Sample, error) {
	var row sampleRow
	found, err := c.db.From(samplesTable).
		Prepared(true).
		Where(goqu.C("name").Eq(name)).
		ScanStructContext(ctx, &row)
	if err != nil {
		return nil, errors.Wrapf(err, "error querying sample %s", name)
	}
	if !found {
		return nil, sampleNotFound(name)
	}
	return &Sample{Name: row.Name, Data: row.Data, Mask: row.Mask}, nil
}

// Import writes every sample and dataset of document into the database in a single transaction.
// Samples and datasets already present under the same name are replaced. Documents that break
// the dataset invariants are rejected as a whole.
func (c *SQLCatalog) Import(ctx context.Context, document *Document) error {
	datasets := make([]*Dataset, len(document.Datasets))
	for i := range document.Datasets {
		datasets[i] = &document.Datasets[i]
	}
	if err := Validate(datasets); err != nil {
		return errors.WithMessage(err, "refusing to import an invalid catalog")
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	return tx.Wrap(func() error {
		for _, s := range document.Samples {
			if _, err := tx.Delete(samplesTable).Prepared(true).
				Where(goqu.C("name").Eq(s.Name)).
				Executor().ExecContext(ctx); err != nil {
				return errors.Wrapf(err, "error replacing sample %s", s.Name)
			}
			if _, err := tx.Insert(samplesTable).Prepared(true).
				Rows(sampleRow{Name: s.Name, Data: s.Data, Mask: s.Mask}).
				Executor().ExecContext(ctx); err != nil {
				return errors.Wrapf(err, "error inserting sample %s", s.Name)
			}
		}
		for _, d := range document.Datasets {
			if err := importDataset(ctx, tx, d); err != nil {
				return err
			}
		}
		return nil
	})
}

func importDataset(ctx context.Context, tx *goqu.TxDatabase, d Dataset) error {
	var existingId int64
	found, err := tx.From(datasetsTable).Prepared(true).
		Select("id").
		Where(goqu.C("name").Eq(d.Name)).
		ScanValContext(ctx, &existingId)
	if err != nil {
		return errors.Wrapf(err, "error looking up dataset %s", d.Name)
	}
	if found {
		if _, err := tx.Delete(filesTable).Prepared(true).
			Where(goqu.C("dataset_id").Eq(existingId)).
			Executor().ExecContext(ctx); err != nil {
			return errors.Wrapf(err, "error replacing files of dataset %s", d.Name)
		}
		if _, err := tx.Delete(datasetsTable).Prepared(true).
			Where(goqu.C("id").Eq(existingId)).
			Executor().ExecContext(ctx); err != nil {
			return errors.Wrapf(err, "error replacing dataset %s", d.Name)
		}
	}

	result, err := tx.Insert(datasetsTable).Prepared(true).
		Rows(datasetRow{
			Name:       d.Name,
			Category:   d.Category,
			Subprocess: d.Subprocess,
			Generation: d.Generation,
			Sample:     d.Sample,
		}).
		Executor().ExecContext(ctx)
	if err != nil {
		return errors.Wrapf(err, "error inserting dataset %s", d.Name)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return errors.WithStack(err)
	}

	if len(d.Files) == 0 {
		return nil
	}
	rows := make([]interface{}, len(d.Files))
	for i, path := range d.Files {
		rows[i] = fileRow{DatasetId: id, Position: i, Path: path, Events: d.Events[i]}
	}
	if _, err := tx.Insert(filesTable).Prepared(true).
		Rows(rows...).
		Executor().ExecContext(ctx); err != nil {
		return errors.Wrapf(err, "error inserting files of dataset %s", d.Name)
	}
	return nil
}

func (c *SQLCatalog) Close() error {
	return c.sqlDB.Close()
}
