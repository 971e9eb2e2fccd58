package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/classforge/internal/graph"
	"github.com/dusk-indust/classforge/internal/javasrc"
	"github.com/dusk-indust/classforge/internal/model"
)

func fixtureRoot(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs("../../testdata/fixtures/java_project")
	require.NoError(t, err)
	return abs
}

func newTestImporter(t *testing.T, opts ...Option) (*Importer, *graph.MemStore) {
	t.Helper()
	store := graph.NewMemStore()
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithResolver(graph.NewResolver(graph.WithPlacer(graph.GridPlacer{Columns: 4, Spacing: 200}))),
	}, opts...)
	im, err := New(store, opts...)
	require.NoError(t, err)
	return im, store
}

func TestImportSource(t *testing.T) {
	ctx := context.Background()
	im, store := newTestImporter(t)

	res, err := im.ImportSource(ctx, "Dog.java", "public class Dog extends Animal { private Owner owner; }")
	require.NoError(t, err)
	assert.Equal(t, "Dog", res.Class)
	assert.Equal(t, "node-dog", res.NodeID)
	assert.ElementsMatch(t, []string{"node-animal", "node-owner"}, res.Report.GhostNodes)

	d, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, d.Nodes, 3)
	assert.Len(t, d.Edges, 2)
	require.NoError(t, d.Check())

	// A later import of the parent replaces the ghost in place.
	before := d.Nodes["node-animal"].Position
	_, err = im.ImportSource(ctx, "Animal.java", "public abstract class Animal {}")
	require.NoError(t, err)
	d, err = store.Snapshot(ctx)
	require.NoError(t, err)
	animal := d.Nodes["node-animal"]
	assert.False(t, animal.Data.Ghost)
	assert.Equal(t, model.StereotypeAbstract, animal.Data.Stereotype)
	assert.Equal(t, before, animal.Position)
}

func TestImportSource_ParseError(t *testing.T) {
	im, store := newTestImporter(t)

	_, err := im.ImportSource(context.Background(), "Empty.java", "// nothing here")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
	assert.True(t, errors.Is(err, javasrc.ErrNoDeclaration))
	assert.Contains(t, err.Error(), "Empty.java")

	d, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, d.Nodes, "failed parse must not touch the store")
}

func TestImportSource_Skipped(t *testing.T) {
	im, _ := newTestImporter(t)
	res, err := im.ImportSource(context.Background(), "Odd.java", "class Odd { static { init(); } Odd() {} int x; }")
	require.NoError(t, err)
	assert.Equal(t, []string{"Odd()"}, res.Skipped)
}

func TestParse_Cache(t *testing.T) {
	im, _ := newTestImporter(t, WithCacheSize(2))
	src := "class A {}"

	first, err := im.Parse("A.java", src)
	require.NoError(t, err)
	second, err := im.Parse("copy/A.java", src)
	require.NoError(t, err)
	assert.Same(t, first, second, "identical content hits the cache")

	hits, misses := im.CacheStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)

	_, err = im.Parse("B.java", "class B {}")
	require.NoError(t, err)
	_, err = im.Parse("C.java", "class C {}")
	require.NoError(t, err)
	_, err = im.Parse("A.java", src)
	require.NoError(t, err)
	hits, misses = im.CacheStats()
	assert.Equal(t, int64(1), hits, "A was evicted")
	assert.Equal(t, int64(4), misses)

	// Failures are not cached.
	_, err = im.Parse("X.java", "nope")
	require.Error(t, err)
	_, err = im.Parse("X.java", "nope")
	require.Error(t, err)
	_, misses = im.CacheStats()
	assert.Equal(t, int64(6), misses)
}

func TestImportDir(t *testing.T) {
	ctx := context.Background()
	im, store := newTestImporter(t, WithExcludeDirs([]string{"build"}), WithParallelism(3))

	res, err := im.ImportDir(ctx, fixtureRoot(t))
	require.NoError(t, err)

	var files []string
	for _, r := range res.Imported {
		files = append(files, r.File)
	}
	assert.Equal(t, []string{
		"Animal.java", "Color.java", "Dog.java", "Main.java", "Pet.java", "people/Owner.java",
	}, files)

	require.Len(t, res.Failed, 1)
	assert.Equal(t, "Broken.java", res.Failed[0].File)

	assert.Equal(t, 7, res.Stats.NodeCount)
	assert.Equal(t, 1, res.Stats.GhostCount)
	assert.Equal(t, 1, res.Stats.EntryPoints)
	assert.Equal(t, 5, res.Stats.EdgeCount)
	assert.Equal(t, 3, res.Stats.EdgesByKind[model.RelationshipAssociation])

	d, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, d.Check())
	assert.NotContains(t, d.Nodes, "node-generated", "excluded directory")
	assert.True(t, d.Nodes["node-toy"].Data.Ghost)
	assert.False(t, d.Nodes["node-pet"].Data.Ghost)
	assert.Equal(t, []string{"BROWN", "BLACK", "WHITE"}, d.Nodes["node-color"].Data.EnumConstants)
	assert.Equal(t, "0..*", d.Edges[graph.EdgeID("Owner", "Dog", model.RelationshipAssociation)].Data.TargetMultiplicity)
}

func TestImportDir_Deterministic(t *testing.T) {
	ctx := context.Background()
	root := fixtureRoot(t)

	var snapshots []graph.Diagram
	for _, n := range []int{1, 4} {
		im, store := newTestImporter(t, WithExcludeDirs([]string{"build"}), WithParallelism(n))
		_, err := im.ImportDir(ctx, root)
		require.NoError(t, err)
		d, err := store.Snapshot(ctx)
		require.NoError(t, err)
		snapshots = append(snapshots, d)
	}
	assert.Equal(t, snapshots[0], snapshots[1])
}

func TestImportDir_Reimport(t *testing.T) {
	ctx := context.Background()
	im, store := newTestImporter(t, WithExcludeDirs([]string{"build"}))
	root := fixtureRoot(t)

	_, err := im.ImportDir(ctx, root)
	require.NoError(t, err)
	first, err := store.Snapshot(ctx)
	require.NoError(t, err)

	_, err = im.ImportDir(ctx, root)
	require.NoError(t, err)
	second, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	hits, _ := im.CacheStats()
	assert.Equal(t, int64(6), hits, "second run reuses every successful parse")
}

func TestImportDir_Errors(t *testing.T) {
	im, _ := newTestImporter(t)

	_, err := im.ImportDir(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "A.java")
	require.NoError(t, os.WriteFile(file, []byte("class A {}"), 0o644))
	_, err = im.ImportDir(context.Background(), file)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = im.ImportDir(ctx, fixtureRoot(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	im, store := newTestImporter(t)

	imported := make(chan *Result, 4)
	w, err := im.NewWatcher(dir, WithDebounce(20*time.Millisecond), OnImport(func(r *Result, err error) {
		if err == nil {
			imported <- r
		}
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("class Ignored {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cat.java"), []byte("public class Cat extends Animal {}"), 0o644))

	select {
	case r := <-imported:
		assert.Equal(t, "Cat", r.Class)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not import Cat.java")
	}

	d, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Contains(t, d.Nodes, "node-cat")
	assert.NotContains(t, d.Nodes, "node-ignored")
}
