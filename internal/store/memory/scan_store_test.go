package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

func newScan(target uuid.UUID, status string) *models.SecurityScan {
	return &models.SecurityScan{
		ScanID:        uuid.Must(uuid.NewV7()),
		ScanType:      models.ScanTypeVulnerability,
		TargetModelID: target,
		Status:        status,
	}
}

func TestScanStore_List(t *testing.T) {
	st := NewScanStore()
	ctx := context.Background()
	modelA := uuid.Must(uuid.NewV7())
	modelB := uuid.Must(uuid.NewV7())

	require.NoError(t, st.Create(ctx, newScan(modelA, models.ScanStatusPending)))
	require.NoError(t, st.Create(ctx, newScan(modelA, models.ScanStatusRunning)))
	require.NoError(t, st.Create(ctx, newScan(modelB, models.ScanStatusCompleted)))

	t.Run("filter by target model", func(t *testing.T) {
		scans, err := st.List(ctx, store.ScanFilter{TargetModelID: &modelA})
		require.NoError(t, err)
		require.Len(t, scans, 2)
	})

	t.Run("filter by status", func(t *testing.T) {
		scans, err := st.List(ctx, store.ScanFilter{Status: models.ScanStatusRunning})
		require.NoError(t, err)
		require.Len(t, scans, 1)
	})
}

func TestScanStore_CountRunningByModels(t *testing.T) {
	st := NewScanStore()
	ctx := context.Background()
	modelA := uuid.Must(uuid.NewV7())
	modelB := uuid.Must(uuid.NewV7())
	foreign := uuid.Must(uuid.NewV7())

	require.NoError(t, st.Create(ctx, newScan(modelA, models.ScanStatusRunning)))
	require.NoError(t, st.Create(ctx, newScan(modelB, models.ScanStatusRunning)))
	require.NoError(t, st.Create(ctx, newScan(modelB, models.ScanStatusCompleted)))
	require.NoError(t, st.Create(ctx, newScan(foreign, models.ScanStatusRunning)))

	count, err := st.CountRunningByModels(ctx, []uuid.UUID{modelA, modelB})
	require.NoError(t, err)
	require.Equal(t, 2, count)

	count, err = st.CountRunningByModels(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestScanStore_Stats(t *testing.T) {
	st := NewScanStore()
	ctx := context.Background()
	target := uuid.Must(uuid.NewV7())

	require.NoError(t, st.Create(ctx, newScan(target, models.ScanStatusPending)))
	require.NoError(t, st.Create(ctx, newScan(target, models.ScanStatusCompleted)))
	require.NoError(t, st.Create(ctx, newScan(target, models.ScanStatusCompleted)))
	// Stopped scans count like any other status bucket.
	require.NoError(t, st.Create(ctx, newScan(target, models.ScanStatusStopped)))

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, stats.Total)
	require.Equal(t, 2, stats.ByStatus[models.ScanStatusCompleted])
	require.Equal(t, 1, stats.ByStatus[models.ScanStatusStopped])
}

func TestScanStore_CopySemantics(t *testing.T) {
	st := NewScanStore()
	ctx := context.Background()

	scan := newScan(uuid.Must(uuid.NewV7()), models.ScanStatusCompleted)
	scan.Findings = map[string]any{"issues": 3}
	require.NoError(t, st.Create(ctx, scan))

	got, err := st.Get(ctx, scan.ScanID)
	require.NoError(t, err)
	got.Findings["issues"] = 99

	again, err := st.Get(ctx, scan.ScanID)
	require.NoError(t, err)
	require.Equal(t, 3, again.Findings["issues"])
}
