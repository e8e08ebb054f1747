package safesave_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"skiprice/internal/dataset"
	"skiprice/internal/safesave"
)

const cleanCSV = `Name,state,Runs,AdultWeekend
Alpha Peak,Montana,105,81.0
Beta Bowl,Idaho,,65.5
`

func sampleDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.ReadCSV(strings.NewReader(cleanCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return ds
}

type recorded struct {
	results []safesave.Result
	err     error
}

func (r *recorded) RecordSave(_ context.Context, result safesave.Result) error {
	r.results = append(r.results, result)
	return r.err
}

// listTree returns every path under root, relative to it.
func listTree(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(path string, _ fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	slices.Sort(out)
	return out
}

func TestSaveCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ds := sampleDataset(t)
	saver := safesave.New(safesave.WithConfirmer(safesave.NeverOverwrite))

	result, err := saver.Save(context.Background(), ds, "clean_data.csv", dir)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if result.Status != safesave.StatusWritten || !result.Saved() {
		t.Fatalf("expected written, got %+v", result)
	}
	if result.Path != filepath.Join(dir, "clean_data.csv") {
		t.Fatalf("unexpected path %q", result.Path)
	}
	if result.Format != safesave.FormatCSV {
		t.Fatalf("unexpected format %q", result.Format)
	}

	back, err := dataset.ReadCSVFile(result.Path)
	if err != nil {
		t.Fatalf("ReadCSVFile: %v", err)
	}
	if !ds.Equal(back) {
		t.Fatalf("csv round trip mismatch:\n%v\n%v", ds.Records(), back.Records())
	}
	info, err := os.Stat(result.Path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != result.Bytes {
		t.Fatalf("reported %d bytes, file has %d", result.Bytes, info.Size())
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("unexpected mode %v", info.Mode().Perm())
	}
}

type modelBlob struct {
	Version        string             `msgpack:"version"`
	LibraryVersion string             `msgpack:"library_version"`
	Weights        map[string]float64 `msgpack:"weights"`
}

func TestSaveBinaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	saver := safesave.New(safesave.WithConfirmer(safesave.NeverOverwrite))

	blob := modelBlob{Version: "1.0", LibraryVersion: "v0.15.1", Weights: map[string]float64{"Runs": 0.25}}
	result, err := saver.Save(context.Background(), blob, "model.PKL", dir)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if result.Format != safesave.FormatBinary {
		t.Fatalf("unexpected format %q", result.Format)
	}
	var back modelBlob
	if err := safesave.LoadBinary(result.Path, &back); err != nil {
		t.Fatalf("LoadBinary: %v", err)
	}
	if !reflect.DeepEqual(blob, back) {
		t.Fatalf("binary round trip mismatch: %+v vs %+v", blob, back)
	}

	ds := sampleDataset(t)
	dsResult, err := saver.Save(context.Background(), ds, "snapshot.pkl", dir)
	if err != nil {
		t.Fatalf("Save dataset: %v", err)
	}
	var dsBack dataset.Dataset
	if err := safesave.LoadBinary(dsResult.Path, &dsBack); err != nil {
		t.Fatalf("LoadBinary dataset: %v", err)
	}
	if !ds.Equal(&dsBack) {
		t.Fatal("dataset binary round trip mismatch")
	}
}

func TestSaveCreatesOnlyTheTargetTree(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "a", "b", "c")
	saver := safesave.New(safesave.WithConfirmer(safesave.NeverOverwrite))

	if _, err := saver.Save(context.Background(), sampleDataset(t), "out.csv", target); err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := []string{"a", "a/b", "a/b/c", "a/b/c/out.csv"}
	if got := listTree(t, root); !slices.Equal(got, want) {
		t.Fatalf("unexpected tree: %v", got)
	}
}

func TestDeclinedOverwriteLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clean_data.csv")
	original := []byte("keep,me\n1,2\n")
	if err := os.WriteFile(path, original, 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	confirmers := map[string]safesave.Confirmer{
		"never":        safesave.NeverOverwrite,
		"prompt no":    safesave.NewPrompt(strings.NewReader("n\n"), nil),
		"prompt blank": safesave.NewPrompt(strings.NewReader("\n"), nil),
		"prompt eof":   safesave.NewPrompt(strings.NewReader(""), nil),
	}
	for name, confirm := range confirmers {
		t.Run(name, func(t *testing.T) {
			rec := &recorded{}
			saver := safesave.New(safesave.WithConfirmer(confirm), safesave.WithRecorder(rec))
			result, err := saver.Save(context.Background(), sampleDataset(t), "clean_data.csv", dir)
			if err != nil {
				t.Fatalf("declining must not be an error: %v", err)
			}
			if result.Status != safesave.StatusSkipped || result.Saved() {
				t.Fatalf("expected skipped, got %+v", result)
			}
			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !bytes.Equal(got, original) {
				t.Fatalf("existing file changed: %q", got)
			}
			if len(rec.results) != 1 || rec.results[0].Status != safesave.StatusSkipped {
				t.Fatalf("expected skipped outcome recorded, got %+v", rec.results)
			}
		})
	}
	if entries := listTree(t, dir); len(entries) != 1 {
		t.Fatalf("expected no temp files left behind, got %v", entries)
	}
}

func TestConfirmedOverwriteReplacesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clean_data.csv")
	if err := os.WriteFile(path, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	var asked []string
	confirm := safesave.ConfirmFunc(func(_ context.Context, p string) (bool, error) {
		asked = append(asked, p)
		return true, nil
	})
	saver := safesave.New(safesave.WithConfirmer(confirm))

	result, err := saver.Save(context.Background(), sampleDataset(t), "clean_data.csv", dir)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if result.Status != safesave.StatusWritten {
		t.Fatalf("expected written, got %+v", result)
	}
	if !slices.Equal(asked, []string{path}) {
		t.Fatalf("expected one confirmation for %s, got %v", path, asked)
	}
	got, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(got), "Name,state,Runs,AdultWeekend\n") {
		t.Fatalf("file not replaced: %q", got)
	}
}

func TestConfirmerErrorIsReturned(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.csv"), []byte("a\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	boom := errors.New("terminal closed")
	saver := safesave.New(safesave.WithConfirmer(safesave.ConfirmFunc(func(context.Context, string) (bool, error) {
		return false, boom
	})))
	if _, err := saver.Save(context.Background(), sampleDataset(t), "x.csv", dir); !errors.Is(err, boom) {
		t.Fatalf("expected confirmer error, got %v", err)
	}
}

func TestUnsupportedFormatPerformsNoIO(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "never")
	saver := safesave.New(safesave.WithConfirmer(safesave.AlwaysOverwrite))

	for _, name := range []string{"notes.txt", "data.json", "noext"} {
		_, err := saver.Save(context.Background(), sampleDataset(t), name, target)
		if !errors.Is(err, safesave.ErrUnsupportedFormat) {
			t.Fatalf("%s: expected ErrUnsupportedFormat, got %v", name, err)
		}
	}
	if got := listTree(t, root); len(got) != 0 {
		t.Fatalf("expected no filesystem changes, got %v", got)
	}
}

func TestInvalidFilename(t *testing.T) {
	root := t.TempDir()
	saver := safesave.New(safesave.WithConfirmer(safesave.AlwaysOverwrite))
	for _, name := range []string{"", "..", "../escape.csv", "sub/file.csv", `sub\file.csv`, ".csv", " x.csv"} {
		_, err := saver.Save(context.Background(), sampleDataset(t), name, root)
		if !errors.Is(err, safesave.ErrInvalidFilename) {
			t.Fatalf("%q: expected ErrInvalidFilename, got %v", name, err)
		}
	}
	if got := listTree(t, root); len(got) != 0 {
		t.Fatalf("expected no filesystem changes, got %v", got)
	}
}

func TestSerializationErrorPerformsNoIO(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "out")
	saver := safesave.New(safesave.WithConfirmer(safesave.AlwaysOverwrite))

	cases := []struct {
		name     string
		data     any
		filename string
	}{
		{"not tabular", map[string]int{"a": 1}, "table.csv"},
		{"nil dataset", (*dataset.Dataset)(nil), "table.csv"},
		{"unencodable", make(chan int), "model.pkl"},
		{"nil", nil, "model.pkl"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := saver.Save(context.Background(), tc.data, tc.filename, target)
			if !errors.Is(err, safesave.ErrSerialization) {
				t.Fatalf("expected ErrSerialization, got %v", err)
			}
		})
	}
	if got := listTree(t, root); len(got) != 0 {
		t.Fatalf("expected no filesystem changes, got %v", got)
	}
}

func TestIOErrors(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	saver := safesave.New(safesave.WithConfirmer(safesave.AlwaysOverwrite))

	_, err := saver.Save(context.Background(), sampleDataset(t), "out.csv", filepath.Join(blocker, "sub"))
	if !errors.Is(err, safesave.ErrIO) {
		t.Fatalf("expected ErrIO when a parent is a file, got %v", err)
	}

	if err := os.Mkdir(filepath.Join(root, "taken.csv"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	_, err = saver.Save(context.Background(), sampleDataset(t), "taken.csv", root)
	if !errors.Is(err, safesave.ErrIO) {
		t.Fatalf("expected ErrIO when destination is a directory, got %v", err)
	}
}

func TestRecorderFailureDoesNotChangeResult(t *testing.T) {
	rec := &recorded{err: errors.New("ledger locked")}
	saver := safesave.New(safesave.WithConfirmer(safesave.NeverOverwrite), safesave.WithRecorder(rec))

	result, err := saver.Save(context.Background(), sampleDataset(t), "out.csv", t.TempDir())
	if err != nil {
		t.Fatalf("recorder failure must not fail the save: %v", err)
	}
	if result.Status != safesave.StatusWritten {
		t.Fatalf("expected written, got %+v", result)
	}
	if len(rec.results) != 1 || rec.results[0].Bytes != result.Bytes {
		t.Fatalf("expected recorder to see the outcome, got %+v", rec.results)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	root := t.TempDir()
	_, err := safesave.New().Save(ctx, sampleDataset(t), "out.csv", filepath.Join(root, "x"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := listTree(t, root); len(got) != 0 {
		t.Fatalf("expected no filesystem changes, got %v", got)
	}
}

// A fresh checkout: save into ./data, then repeat without confirming.
func TestFreshCheckoutScenario(t *testing.T) {
	project := t.TempDir()
	t.Chdir(project)
	ds := sampleDataset(t)
	ctx := context.Background()

	first, err := safesave.New(safesave.WithConfirmer(safesave.NeverOverwrite)).Save(ctx, ds, "clean_data.csv", "data")
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	wantPath := filepath.Join(project, "data", "clean_data.csv")
	if resolved, err := filepath.EvalSymlinks(first.Path); err == nil {
		if want, err := filepath.EvalSymlinks(wantPath); err == nil {
			wantPath, first.Path = want, resolved
		}
	}
	if first.Status != safesave.StatusWritten || first.Path != wantPath {
		t.Fatalf("unexpected first result %+v (want path %s)", first, wantPath)
	}
	before, err := os.ReadFile(filepath.Join("data", "clean_data.csv"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(before), "Name,state,Runs,AdultWeekend\n") {
		t.Fatalf("missing header: %q", before)
	}
	if lines := strings.Count(string(before), "\n"); lines != ds.Nrow()+1 {
		t.Fatalf("expected %d lines, got %d", ds.Nrow()+1, lines)
	}

	var prompt bytes.Buffer
	second, err := safesave.New(safesave.WithConfirmer(safesave.NewPrompt(strings.NewReader(""), &prompt))).
		Save(ctx, ds, "clean_data.csv", "data")
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.Status != safesave.StatusSkipped {
		t.Fatalf("expected skipped, got %+v", second)
	}
	if !strings.Contains(prompt.String(), "already exists. Overwrite? [y/N]:") {
		t.Fatalf("expected overwrite prompt, got %q", prompt.String())
	}
	after, _ := os.ReadFile(filepath.Join("data", "clean_data.csv"))
	if !bytes.Equal(before, after) {
		t.Fatal("file changed after declined save")
	}
}

func TestLoadBinaryMissingFile(t *testing.T) {
	var v modelBlob
	err := safesave.LoadBinary(filepath.Join(t.TempDir(), "missing.pkl"), &v)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}
