package table

import (
	"context"

	"github.com/utakatalp/standings-simulator/internal/league"
)

// FileSource serves the base table from a CSV file, re-reading it on every
// call so edits are picked up without a restart.
type FileSource struct {
	Path string
}

func (f FileSource) GetTable(_ context.Context) ([]league.TeamRecord, error) {
	return LoadFile(f.Path)
}
