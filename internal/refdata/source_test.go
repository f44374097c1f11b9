package refdata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/garyellow/programme-matcher/internal/errors"
	"github.com/garyellow/programme-matcher/internal/r2client"
)

func TestDirSource_Read(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "modules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyOccupations), []byte(`[]`), 0o600))

	compressed, err := r2client.Compress([]byte(`[{"modulecode":"CS1010"}]`))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "modules", "Module_code_and_description_NUS.json.zst"), compressed, 0o600))

	src := NewDirSource(dir)
	ctx := context.Background()

	got, err := src.Read(ctx, KeyOccupations)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	got, err = src.Read(ctx, "modules/Module_code_and_description_NUS.json")
	require.NoError(t, err)
	assert.Equal(t, `[{"modulecode":"CS1010"}]`, string(got))

	_, err = src.Read(ctx, "mappings.json")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDirSource_RejectsEscapingKeys(t *testing.T) {
	t.Parallel()

	src := NewDirSource(t.TempDir())
	_, err := src.Read(context.Background(), "../etc/passwd")
	assert.True(t, apperrors.IsInvalidInput(err))
}

type fakeObjects map[string][]byte

func (f fakeObjects) Get(_ context.Context, key string) ([]byte, error) {
	if key == "broken.json" {
		return nil, errors.New("access denied")
	}
	d, ok := f[key]
	if !ok {
		return nil, r2client.ErrNotFound
	}
	return d, nil
}

func TestR2Source_Read(t *testing.T) {
	t.Parallel()

	compressed, err := r2client.Compress([]byte(strings.Repeat("x", 64)))
	require.NoError(t, err)

	src := NewR2Source(fakeObjects{
		"plain.json":      []byte(`{}`),
		"packed.json.zst": compressed,
	})
	ctx := context.Background()

	got, err := src.Read(ctx, "plain.json")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))

	got, err = src.Read(ctx, "packed.json")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 64), string(got))

	_, err = src.Read(ctx, "missing.json")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = src.Read(ctx, "broken.json")
	require.Error(t, err)
	assert.False(t, apperrors.IsNotFound(err))
}

func TestSchemaError_TruncatesViolations(t *testing.T) {
	t.Parallel()

	err := &SchemaError{Schema: "catalog", Violations: []string{"a", "b", "c", "d", "e", "f", "g"}}
	assert.Equal(t, "document does not match catalog schema: a; b; c; d; e (and 2 more)", err.Error())
}

func TestCatalogSchema(t *testing.T) {
	t.Parallel()

	assert.NoError(t, catalogSchema.Validate([]byte(`[{"modulecode":"CS1010","title":"x","description":null}]`)))
	assert.NoError(t, catalogSchema.Validate([]byte(`[{"course_code":"SC1003","university":"NTU","aus_cus":null}]`)))
	assert.Error(t, catalogSchema.Validate([]byte(`[{"title":"no code"}]`)))
	assert.Error(t, catalogSchema.Validate([]byte(`{"modulecode":"CS1010"}`)))

	var nilSchema *Schema
	assert.NoError(t, nilSchema.Validate([]byte(`anything`)))
}

func TestQuestionFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{QuestionKey("Data_Science_NUS.json"), "Data_Science_NUS.json", true},
		{"questions/nested/Data_Science_NUS.json", "Data_Science_NUS.json", false},
		{"questions/", "", false},
		{KeyPrefixMaps, KeyPrefixMaps, false},
	}
	for _, tt := range tests {
		got, ok := QuestionFilename(tt.key)
		assert.Equal(t, tt.wantOK, ok, tt.key)
		if ok {
			assert.Equal(t, tt.want, got)
		}
	}
}
