package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/garyellow/programme-matcher/internal/errors"
	"github.com/garyellow/programme-matcher/internal/logger"
	"github.com/garyellow/programme-matcher/internal/majorname"
	"github.com/garyellow/programme-matcher/internal/r2client"
	"github.com/garyellow/programme-matcher/internal/refdata"
)

func TestParseScores(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"pairs", "Investigative=9,Realistic=8", []string{"Investigative", "Realistic"}, false},
		{"spaces and empty parts", " Social = 3 ,, Artistic=1 ", []string{"Social", "Artistic"}, false},
		{"missing score", "Conventional", []string{"Conventional"}, false},
		{"empty", "", nil, false},
		{"bad score", "Social=high", nil, true},
		{"empty name", "=4", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScores(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			var names []string
			for _, c := range got {
				names = append(names, c.Component)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	got, err := parseScores("Conventional,Social=2.5")
	require.NoError(t, err)
	assert.Nil(t, got[0].Score)
	require.NotNil(t, got[1].Score)
	assert.InDelta(t, 2.5, *got[1].Score, 1e-9)
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCodeCommand(t *testing.T) {
	out := execute(t, "code",
		"--riasec", "Artistic=1,Investigative=9,Realistic=8,Conventional=7",
		"--work-values", "Achievement=9,Independence=8,Relationships=7")

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "IRC", got["riasecCode"])
	assert.Equal(t, "AIR", got["workValueCode"])
}

func TestFilenameCommand(t *testing.T) {
	out := execute(t, "filename", "Data Science at NUS", "Arts & Humanities")

	var got []filenameEntry
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, filenameEntry{
		Major:       "Data Science at NUS",
		Filename:    "Data_Science_NUS.json",
		DisplayName: "Data Science",
		Institution: "NUS",
	}, got[0])
	assert.Equal(t, "Arts_and_Humanities.json", got[1].Filename)
	assert.Empty(t, got[1].Institution)
}

func TestListDocuments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "questions"), 0o755))
	for _, name := range []string{"mappings.json", "questions/Data_Science_NUS.json", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.FromSlash(name)), []byte("[]"), 0o600))
	}

	keys, err := listDocuments(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"mappings.json", "questions/Data_Science_NUS.json"}, keys)
}

func TestVerifyReference(t *testing.T) {
	docs := map[string][]byte{
		refdata.KeyOccupations: []byte(`[
			{"occupation":"Software Developer","RIASEC_code":"IRC","work_value_code":"AIR","majors":["Computer Science at NUS","Philosophy"]},
			{"occupation":"Statistician","RIASEC_code":"ICR","work_value_code":"AIR","majors":["Statistics at NTU","Accountancy at SMU"]}
		]`),
		refdata.KeyPrefixMaps: []byte(`{
			"nus_prefix_to_major": {"CS": "Computer Science"},
			"ntu_prefix_to_major": {"MH": "Statistics"},
			"smu_prefix_to_major": {}
		}`),
		refdata.CatalogKey(majorname.NUS):                []byte(`[{"modulecode":"CS1010","title":"Programming Methodology"}]`),
		refdata.CatalogKey(majorname.NTU):                []byte(`[]`),
		refdata.CatalogKey(majorname.SMU):                []byte(`[]`),
		refdata.QuestionKey("Computer_Science_NUS.json"): []byte(`[{"id":1,"criterion":"Interests","question":"Why computing?"}]`),
	}
	store := refdata.NewStore(refdata.NewMemorySource(docs))

	results := verifyReference(context.Background(), store)

	byName := make(map[string]verifyResult, len(results))
	for _, r := range results {
		byName[r.name] = r
	}
	assert.True(t, byName["occupations"].passed)
	assert.True(t, byName["prefix maps"].passed)
	assert.True(t, byName["catalog NUS"].passed)
	assert.True(t, byName["Computer Science at NUS"].passed)
	assert.False(t, byName["Philosophy"].passed)
	assert.Equal(t, "missing question bank Statistics_NTU.json", byName["Statistics at NTU"].message)
	assert.Contains(t, byName["Accountancy at SMU"].message, "no course prefixes")

	var buf bytes.Buffer
	assert.Equal(t, 3, printVerifyResults(&buf, results))
	assert.Contains(t, buf.String(), "Summary: 6 passed, 3 failed")
}

func TestVerifyReference_MissingOccupations(t *testing.T) {
	store := refdata.NewStore(refdata.NewMemorySource(map[string][]byte{}))

	results := verifyReference(context.Background(), store)
	require.Len(t, results, 1)
	assert.False(t, results[0].passed)
	assert.Equal(t, "occupations", results[0].name)
}

func coreDocs() map[string][]byte {
	return map[string][]byte{
		refdata.KeyOccupations: []byte(`[{"occupation":"Software Developer","RIASEC_code":"IRC","work_value_code":"AIR","majors":["Computer Science at NUS"]}]`),
		refdata.KeyPrefixMaps: []byte(`{
			"nus_prefix_to_major": {"CS": "Computer Science"},
			"ntu_prefix_to_major": {},
			"smu_prefix_to_major": {}
		}`),
		refdata.CatalogKey(majorname.NUS):                []byte(`[{"modulecode":"CS1010","title":"Programming Methodology"}]`),
		refdata.CatalogKey(majorname.NTU):                []byte(`[]`),
		refdata.CatalogKey(majorname.SMU):                []byte(`[]`),
		refdata.QuestionKey("Computer_Science_NUS.json"): []byte(`[{"id":1,"question":"Why computing?"}]`),
	}
}

func writeDocs(t *testing.T, docs map[string][]byte) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	for key, data := range docs {
		p := filepath.Join(dir, filepath.FromSlash(key))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, data, 0o600))
	}
	keys, err := listDocuments(dir)
	require.NoError(t, err)
	return dir, keys
}

func TestValidateDocuments(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		dir, keys := writeDocs(t, coreDocs())
		store := refdata.NewStore(refdata.NewDirSource(dir))
		assert.NoError(t, validateDocuments(context.Background(), store, keys))
	})

	t.Run("invalid question bank", func(t *testing.T) {
		docs := coreDocs()
		docs[refdata.QuestionKey("Bad_NUS.json")] = []byte(`{"not":"an array"}`)
		dir, keys := writeDocs(t, docs)
		store := refdata.NewStore(refdata.NewDirSource(dir))

		err := validateDocuments(context.Background(), store, keys)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "questions/Bad_NUS.json")
		assert.True(t, apperrors.IsDataUnavailable(err))
	})

	t.Run("invalid core document", func(t *testing.T) {
		docs := coreDocs()
		docs[refdata.KeyPrefixMaps] = []byte(`{"nus_prefix_to_major": {"CS": 1}}`)
		dir, keys := writeDocs(t, docs)
		store := refdata.NewStore(refdata.NewDirSource(dir))
		assert.Error(t, validateDocuments(context.Background(), store, keys))
	})
}

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeBucket(objects map[string][]byte) *fakeBucket {
	if objects == nil {
		objects = make(map[string][]byte)
	}
	return &fakeBucket{objects: objects}
}

func (b *fakeBucket) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return "etag-" + key, nil
}

func (b *fakeBucket) PublishCompressed(ctx context.Context, key string, data []byte) (string, error) {
	compressed, err := r2client.Compress(data)
	if err != nil {
		return "", err
	}
	return b.Upload(ctx, key+r2client.CompressedSuffix, bytes.NewReader(compressed), "application/zstd")
}

func (b *fakeBucket) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *fakeBucket) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, r2client.ErrNotFound
	}
	return data, nil
}

func (b *fakeBucket) ObjectKey(key string) string { return key }

type fakeCache struct {
	deleted []string
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.deleted = append(c.deleted, keys...)
	return nil
}

func TestPublishDocuments(t *testing.T) {
	log := logger.NewWithWriter("error", io.Discard)
	dir, _ := writeDocs(t, map[string][]byte{refdata.KeyPrefixMaps: []byte(`"new"`)})
	keys := []string{refdata.KeyPrefixMaps}

	t.Run("compressed replaces plain object", func(t *testing.T) {
		bucket := newFakeBucket(map[string][]byte{refdata.KeyPrefixMaps: []byte(`"old"`)})
		cache := &fakeCache{}

		var out bytes.Buffer
		require.NoError(t, publishDocuments(context.Background(), &out, log, dir, keys, bucket, cache, true))

		_, err := bucket.Get(context.Background(), refdata.KeyPrefixMaps)
		assert.ErrorIs(t, err, r2client.ErrNotFound)
		got, err := refdata.NewR2Source(bucket).Read(context.Background(), refdata.KeyPrefixMaps)
		require.NoError(t, err)
		assert.Equal(t, `"new"`, string(got))

		assert.Equal(t, keys, cache.deleted)
		assert.Contains(t, out.String(), "published mappings.json")
		assert.Contains(t, out.String(), "evicted 1 cached documents")
	})

	t.Run("plain replaces compressed object", func(t *testing.T) {
		old, err := r2client.Compress([]byte(`"old"`))
		require.NoError(t, err)
		bucket := newFakeBucket(map[string][]byte{refdata.KeyPrefixMaps + r2client.CompressedSuffix: old})

		require.NoError(t, publishDocuments(context.Background(), io.Discard, log, dir, keys, bucket, nil, false))

		_, err = bucket.Get(context.Background(), refdata.KeyPrefixMaps+r2client.CompressedSuffix)
		assert.ErrorIs(t, err, r2client.ErrNotFound)
		got, err := refdata.NewR2Source(bucket).Read(context.Background(), refdata.KeyPrefixMaps)
		require.NoError(t, err)
		assert.Equal(t, `"new"`, string(got))
	})
}
