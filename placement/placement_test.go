package placement

import (
	"os"
	"path/filepath"
	"testing"

	"shapecluster/cluster"
	"shapecluster/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture writes files named after the samples and returns two clusters:
// {a, b} and {c}.
func fixture(t *testing.T, dir string) []*cluster.Cluster {
	t.Helper()
	sample := func(name string) *types.ImageSample {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
		s, err := types.NewImageSample(path, 1, 1, []uint8{0})
		require.NoError(t, err)
		return s
	}

	metric := cluster.PixelDiff{PixelThreshold: 20}
	a := cluster.NewSingleton(1, sample("a.jpg"))
	b := cluster.NewSingleton(2, sample("b.jpg"))
	c := cluster.NewSingleton(3, sample("c.jpg"))
	return []*cluster.Cluster{cluster.NewMerged(4, a, b, metric, 1), c}
}

func TestPlanAssignsIndexesInOrder(t *testing.T) {
	dir := t.TempDir()
	clusters := fixture(t, dir)

	got, err := Plan(clusters, Options{OutputDir: "out"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, types.Assignment{
		Path:         filepath.Join(dir, "a.jpg"),
		Destination:  filepath.Join("out", "Cluster_1", "a.jpg"),
		ClusterIndex: 1,
		IsClustroid:  true,
	}, got[0])
	assert.Equal(t, 1, got[1].ClusterIndex)
	assert.False(t, got[1].IsClustroid)
	assert.Equal(t, filepath.Join("out", "Cluster_2", "c.jpg"), got[2].Destination)
	assert.True(t, got[2].IsClustroid)
}

func TestPlanRejectsNameCollision(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "x"), 0o755))
	s1, err := types.NewImageSample(filepath.Join(dir, "shape.jpg"), 1, 1, []uint8{0})
	require.NoError(t, err)
	s2, err := types.NewImageSample(filepath.Join(dir, "x", "shape.jpg"), 1, 1, []uint8{0})
	require.NoError(t, err)

	merged := cluster.NewMerged(3, cluster.NewSingleton(1, s1), cluster.NewSingleton(2, s2), cluster.PixelDiff{}, 1)
	_, err = Plan([]*cluster.Cluster{merged}, Options{OutputDir: dir})
	assert.ErrorIs(t, err, ErrDestinationExists)
}

func TestPlaceMovesFiles(t *testing.T) {
	dir := t.TempDir()
	clusters := fixture(t, dir)

	got, err := Place(clusters, Options{OutputDir: dir})
	require.NoError(t, err)

	for _, a := range got {
		_, err := os.Stat(a.Path)
		assert.True(t, os.IsNotExist(err), "source %s should be gone", a.Path)
		data, err := os.ReadFile(a.Destination)
		require.NoError(t, err)
		assert.Equal(t, filepath.Base(a.Path), string(data))
	}
	assert.DirExists(t, filepath.Join(dir, "Cluster_1"))
	assert.DirExists(t, filepath.Join(dir, "Cluster_2"))
}

func TestPlaceCopiesFiles(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "sorted")
	clusters := fixture(t, dir)

	got, err := Place(clusters, Options{OutputDir: out, Mode: Copy, DirPrefix: "group-"})
	require.NoError(t, err)

	for _, a := range got {
		assert.FileExists(t, a.Path)
		assert.FileExists(t, a.Destination)
	}
	assert.FileExists(t, filepath.Join(out, "group-2", "c.jpg"))
}

func TestPlaceDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	clusters := fixture(t, dir)

	got, err := Place(clusters, Options{OutputDir: dir, DryRun: true})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.NoDirExists(t, filepath.Join(dir, "Cluster_1"))
	assert.FileExists(t, filepath.Join(dir, "a.jpg"))
}

func TestPlaceRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	clusters := fixture(t, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Cluster_2"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cluster_2", "c.jpg"), []byte("old"), 0o644))

	_, err := Place(clusters, Options{OutputDir: dir})
	assert.ErrorIs(t, err, ErrDestinationExists)
	// Nothing moved before the check failed.
	assert.FileExists(t, filepath.Join(dir, "a.jpg"))
}

func TestPlaceReturnsCompletedAssignmentsOnFailure(t *testing.T) {
	dir := t.TempDir()
	clusters := fixture(t, dir)
	// c.jpg vanishes after clustering, so the last move fails
	require.NoError(t, os.Remove(filepath.Join(dir, "c.jpg")))

	got, err := Place(clusters, Options{OutputDir: dir})
	require.Error(t, err)
	require.Len(t, got, 2)
	for _, a := range got {
		assert.Equal(t, 1, a.ClusterIndex)
		assert.FileExists(t, a.Destination)
	}
}
