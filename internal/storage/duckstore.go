package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/panel-layout/backend/internal/models"
)

var duckSchema = []string{`
CREATE TABLE IF NOT EXISTS layouts (
	project_id       VARCHAR PRIMARY KEY,
	container_width  DOUBLE NOT NULL,
	container_height DOUBLE NOT NULL,
	scale            DOUBLE NOT NULL,
	revision         BIGINT NOT NULL,
	updated_at       TIMESTAMP NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS panels (
	project_id   VARCHAR NOT NULL,
	seq          INTEGER NOT NULL,
	id           VARCHAR NOT NULL,
	panel_number VARCHAR,
	roll_number  VARCHAR,
	shape        VARCHAR NOT NULL,
	x            DOUBLE NOT NULL,
	y            DOUBLE NOT NULL,
	width        DOUBLE NOT NULL,
	height       DOUBLE NOT NULL,
	rotation     DOUBLE NOT NULL,
	material     VARCHAR,
	thickness    DOUBLE,
	color        VARCHAR
)`,
}

// DuckStore persists layouts in a DuckDB file so they survive restarts.
type DuckStore struct {
	db     *sql.DB
	dbPath string
	opts   Options
	log    *zap.Logger

	// DuckDB transactions are optimistic; writers are serialized here so a
	// conflict surfaces as ErrRevisionConflict rather than a driver error.
	writeMu sync.Mutex
}

// NewDuckStore opens (or creates) layouts.duckdb under dataDir.
func NewDuckStore(dataDir string, opts Options, log *zap.Logger) (*DuckStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return NewDuckStoreAtPath(filepath.Join(dataDir, "layouts.duckdb"), opts, log)
}

// NewDuckStoreAtPath opens a DuckStore at a specific file path.
func NewDuckStoreAtPath(dbPath string, opts Options, log *zap.Logger) (*DuckStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "duckstore"), zap.String("path", dbPath))

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				log.Warn("pragma failed", zap.String("pragma", pragma), zap.Error(err))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	for _, ddl := range duckSchema {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	log.Info("layout store opened")
	return &DuckStore{db: db, dbPath: dbPath, opts: opts, log: log}, nil
}

// Get loads a layout and its panels in display order.
func (ds *DuckStore) Get(ctx context.Context, projectID string) (*models.Layout, error) {
	l, err := ds.load(ctx, ds.db, projectID)
	if errors.Is(err, ErrProjectNotFound) && ds.opts.AutoCreate {
		if _, cerr := ds.Create(ctx, projectID, 0, 0); cerr != nil && !errors.Is(cerr, ErrProjectExists) {
			return nil, cerr
		}
		return ds.load(ctx, ds.db, projectID)
	}
	return l, err
}

// ReplacePanels rewrites the panel rows and bumps the revision in one transaction.
func (ds *DuckStore) ReplacePanels(ctx context.Context, projectID string, panels []models.Panel, meta ReplaceMeta) (*models.Layout, error) {
	ds.writeMu.Lock()
	defer ds.writeMu.Unlock()

	tx, err := ds.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var revision int64
	err = tx.QueryRowContext(ctx, `SELECT revision FROM layouts WHERE project_id = ?`, projectID).Scan(&revision)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if !ds.opts.AutoCreate {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
		}
		revision = 1
		if err := insertLayout(ctx, tx, newStoredLayout(projectID, 0, 0)); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("reading revision: %w", err)
	}

	if meta.IfRevision != 0 && meta.IfRevision != revision {
		return nil, fmt.Errorf("%w: expected %d, have %d", ErrRevisionConflict, meta.IfRevision, revision)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM panels WHERE project_id = ?`, projectID); err != nil {
		return nil, fmt.Errorf("clearing panels: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO panels
		(project_id, seq, id, panel_number, roll_number, shape, x, y, width, height, rotation, material, thickness, color)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range panels {
		if _, err := stmt.ExecContext(ctx, projectID, i, p.ID, p.PanelNumber, p.RollNumber, string(p.Shape),
			p.X, p.Y, p.Width, p.Height, p.Rotation, p.Material, p.Thickness, p.Color); err != nil {
			return nil, fmt.Errorf("inserting panel %s: %w", p.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE layouts SET revision = ?, updated_at = ? WHERE project_id = ?`,
		revision+1, time.Now().UTC(), projectID); err != nil {
		return nil, fmt.Errorf("updating revision: %w", err)
	}

	l, err := ds.load(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	ds.log.Debug("panels replaced",
		zap.String("project", projectID),
		zap.Int("panels", len(panels)),
		zap.Int64("revision", l.Revision),
		zap.String("source", meta.Source))
	return l, nil
}

// Create inserts an empty layout.
func (ds *DuckStore) Create(ctx context.Context, projectID string, width, height float64) (*models.Layout, error) {
	ds.writeMu.Lock()
	defer ds.writeMu.Unlock()

	var exists int
	err := ds.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM layouts WHERE project_id = ?`, projectID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking project: %w", err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("%w: %s", ErrProjectExists, projectID)
	}

	l := newStoredLayout(projectID, width, height)
	if err := insertLayout(ctx, ds.db, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Close closes the database.
func (ds *DuckStore) Close() error {
	if ds.db != nil {
		return ds.db.Close()
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertLayout(ctx context.Context, q queryer, l *models.Layout) error {
	_, err := q.ExecContext(ctx, `INSERT INTO layouts
		(project_id, container_width, container_height, scale, revision, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		l.ProjectID, l.ContainerWidth, l.ContainerHeight, l.Scale, l.Revision, l.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting layout: %w", err)
	}
	return nil
}

func (ds *DuckStore) load(ctx context.Context, q queryer, projectID string) (*models.Layout, error) {
	l := &models.Layout{ProjectID: projectID, Panels: make([]models.Panel, 0)}
	err := q.QueryRowContext(ctx, `SELECT container_width, container_height, scale, revision, updated_at
		FROM layouts WHERE project_id = ?`, projectID).
		Scan(&l.ContainerWidth, &l.ContainerHeight, &l.Scale, &l.Revision, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}

	rows, err := q.QueryContext(ctx, `SELECT id, panel_number, roll_number, shape, x, y, width, height,
		rotation, material, thickness, color
		FROM panels WHERE project_id = ? ORDER BY seq`, projectID)
	if err != nil {
		return nil, fmt.Errorf("reading panels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p                             models.Panel
			shape                         string
			number, roll, material, color sql.NullString
			thickness                     sql.NullFloat64
		)
		if err := rows.Scan(&p.ID, &number, &roll, &shape, &p.X, &p.Y, &p.Width, &p.Height,
			&p.Rotation, &material, &thickness, &color); err != nil {
			return nil, fmt.Errorf("scanning panel: %w", err)
		}
		p.PanelNumber, p.RollNumber = number.String, roll.String
		p.Material, p.Color = material.String, color.String
		p.Thickness = thickness.Float64
		p.Shape = models.Shape(shape)
		l.Panels = append(l.Panels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating panels: %w", err)
	}
	return l, nil
}
