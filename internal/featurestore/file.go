package featurestore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/faceon/internal/fsutil"
)

// Save writes st to path, choosing the format by extension: .json for the
// flat JSON object, .db for a new run in a SQLite database.
func Save(ctx context.Context, fsys fsutil.FileSystem, path string, st *Store, source string) error {
	switch filepath.Ext(path) {
	case ".json":
		return SaveJSON(fsys, path, st)
	case ".db":
		db, err := OpenSQLite(path)
		if err != nil {
			return err
		}
		defer db.Close()
		_, err = db.SaveStore(ctx, st, source)
		return err
	default:
		return fmt.Errorf("unsupported store format %q (want .json or .db)", filepath.Ext(path))
	}
}

// Load reads the store at path. For a database the newest run is read.
func Load(ctx context.Context, fsys fsutil.FileSystem, path string) (*Store, error) {
	switch filepath.Ext(path) {
	case ".json":
		return LoadJSON(fsys, path)
	case ".db":
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.LoadStore(ctx, "")
	default:
		return nil, fmt.Errorf("unsupported store format %q (want .json or .db)", filepath.Ext(path))
	}
}

// LoadRun reads one gather run by id. Only .db stores record runs.
func LoadRun(ctx context.Context, path, runID string) (*Store, error) {
	if filepath.Ext(path) != ".db" {
		return nil, fmt.Errorf("%w: %s is not a .db store", ErrRunsUnsupported, path)
	}
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.LoadStore(ctx, runID)
}
