package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "runs.db"), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestImportAndHistory(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	run, err := s.Import(ctx, "", "crm", []Record{wing(Coupled, 1), wing(Coupled, 2)})
	require.NoError(t, err)
	_, err = uuid.Parse(run)
	require.NoError(t, err)

	// A second import appends to the same run
	_, err = s.Import(ctx, run, "", []Record{wing(Structural, 3)})
	require.NoError(t, err)

	h, err := s.History(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, run, h.Run())
	assert.Equal(t, []Kind{Coupled, Coupled, Structural}, h.Kinds())

	it, err := h.At(1)
	require.NoError(t, err)
	assert.Equal(t, 1, it.Index)
	assert.InDeltaSlice(t, []float64{1800, 800}, it.Aero.Lift, 1e-9)

	it, err = h.At(2)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, it.Structure.Radius[0], 1e-12)
}

func TestRuns(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	a, err := s.Import(ctx, "", "first", []Record{wing(Aerodynamic, 1)})
	require.NoError(t, err)
	b, err := s.Import(ctx, "", "second", []Record{wing(Structural, 1), wing(Structural, 2)})
	require.NoError(t, err)

	runs, err = s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byID := map[string]Run{}
	for _, r := range runs {
		byID[r.ID] = r
	}
	assert.Equal(t, "first", byID[a].Name)
	assert.Equal(t, 1, byID[a].Iterations)
	assert.Equal(t, 2, byID[b].Iterations)
	assert.False(t, byID[b].Created.IsZero())
}

func TestImportValidatesBeforeWriting(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	bad := wing(Coupled, 1)
	bad.Twist = nil
	_, err := s.Import(ctx, "", "bad", []Record{wing(Coupled, 1), bad})
	require.Error(t, err)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = s.Import(ctx, "not-a-uuid", "", []Record{wing(Coupled, 1)})
	assert.Error(t, err)

	_, err = s.Import(ctx, "", "", nil)
	assert.Error(t, err)
}

func TestHistoryUnknownRun(t *testing.T) {
	s := openStore(t)
	_, err := s.History(context.Background(), uuid.NewString())
	assert.ErrorContains(t, err, "not found")
}

func TestStorePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := Open(path)
	require.NoError(t, err)
	run, err := s.Import(ctx, "", "", []Record{wing(Aerodynamic, 1)})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	h, err := s.History(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Len())
}

func TestLoadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iterations.json")
	data, err := json.Marshal([]Record{wing(Coupled, 1), wing(Aerodynamic, 2)})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	recs, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, wing(Aerodynamic, 2), recs[1])

	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = LoadRecords(path)
	assert.Error(t, err)
}
