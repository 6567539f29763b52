package persist

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/coriolis-dev/shdrift/internal/assoc"
	"github.com/coriolis-dev/shdrift/internal/obslog"
	"github.com/coriolis-dev/shdrift/internal/osfs"
	"github.com/coriolis-dev/shdrift/internal/vocab"
)

func testPaths(dir string) Paths {
	return Paths{
		Vocab: dir + "/vocab.txt",
		Assoc: dir + "/assoc.txt",
		Obs:   dir + "/obs.txt",
	}
}

func TestSaveLoad_RoundTrips_Vocabulary_Association_Observations(t *testing.T) {
	t.Parallel()

	fsys := osfs.NewReal()
	dir := t.TempDir()
	paths := testPaths(dir)

	v := vocab.New()
	v.Append("ls")
	v.Append("-la")
	v.Append("foo")
	v.Assoc().Add(assoc.Key{WordI: 0, PosI: 0, WordK: 1, PosK: 1}, 3)
	v.Assoc().Add(assoc.Key{WordI: 1, PosI: 1, WordK: 0, PosK: 0}, -2)

	obs := obslog.New()
	obs.Append([]int{0, 1, vocab.Terminator})
	obs.Append([]int{2, vocab.Terminator})

	require.NoError(t, Save(fsys, paths, v, obs))

	loadedV, loadedObs, err := Load(fsys, paths, nil)
	require.NoError(t, err)

	require.Equal(t, 3, loadedV.NumWords())
	require.Equal(t, "ls", loadedV.Word(0))
	require.Equal(t, "-la", loadedV.Word(1))
	require.Equal(t, "foo", loadedV.Word(2))

	loadedV.Lock()
	require.Equal(t, 3, loadedV.Assoc().Get(assoc.Key{WordI: 0, PosI: 0, WordK: 1, PosK: 1}))
	require.Equal(t, -2, loadedV.Assoc().Get(assoc.Key{WordI: 1, PosI: 1, WordK: 0, PosK: 0}))
	loadedV.Unlock()

	require.Equal(t, 2, loadedObs.Len())
	loadedObs.Lock()
	if diff := cmp.Diff([]int{0, 1, vocab.Terminator}, loadedObs.LineLocked(0)); diff != "" {
		t.Fatalf("observation line 0 mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]int{2, vocab.Terminator}, loadedObs.LineLocked(1)); diff != "" {
		t.Fatalf("observation line 1 mismatch (-want +got):\n%s", diff)
	}
	loadedObs.Unlock()
}

func TestLoad_Missing_Files_Is_Not_An_Error(t *testing.T) {
	t.Parallel()

	fsys := osfs.NewReal()
	dir := t.TempDir()
	paths := testPaths(dir)

	v, obs, err := Load(fsys, paths, nil)
	require.NoError(t, err)
	require.Equal(t, 0, v.NumWords())
	require.Equal(t, 0, obs.Len())
}

func TestLoad_Skips_Corrupt_Observation_Line_With_Warning(t *testing.T) {
	t.Parallel()

	fsys := osfs.NewReal()
	dir := t.TempDir()
	paths := testPaths(dir)

	v := vocab.New()
	v.Append("a")
	v.Append("b")

	obs := obslog.New()
	require.NoError(t, Save(fsys, paths, v, obs))

	// Hand-write a corrupt observations file: a line missing the -1
	// terminator.
	f, err := fsys.Create(paths.Obs)
	require.NoError(t, err)
	_, err = f.Write([]byte("0 1\n0 1 -1\n"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var warnings []string
	loadedV, loadedObs, err := Load(fsys, paths, func(msg string) { warnings = append(warnings, msg) })
	require.NoError(t, err)
	require.Equal(t, 2, loadedV.NumWords())
	require.Equal(t, 1, loadedObs.Len())
	require.NotEmpty(t, warnings)
}
