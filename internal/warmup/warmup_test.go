package warmup

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/programme-matcher/internal/logger"
	"github.com/garyellow/programme-matcher/internal/metrics"
	"github.com/garyellow/programme-matcher/internal/refdata"
)

type fakeTasker struct {
	tasks []refdata.WarmTask
}

func (f fakeTasker) WarmTasks() []refdata.WarmTask { return f.tasks }

func countingTask(name string, calls *atomic.Int32, err error) refdata.WarmTask {
	return refdata.WarmTask{Name: name, Run: func(context.Context) error {
		calls.Add(1)
		return err
	}}
}

func TestParseTasks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"single task", "occupations", []string{"occupations"}},
		{"multiple tasks", "occupations,prefix_maps", []string{"occupations", "prefix_maps"}},
		{"with spaces", "occupations , prefix_maps ", []string{"occupations", "prefix_maps"}},
		{"with empty items", "occupations,,search_index", []string{"occupations", "search_index"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTasks(tt.input))
		})
	}
}

func TestRun_AllTasks(t *testing.T) {
	t.Parallel()

	var a, b atomic.Int32
	store := fakeTasker{tasks: []refdata.WarmTask{
		countingTask("occupations", &a, nil),
		countingTask("prefix_maps", &b, nil),
	}}

	stats, err := Run(context.Background(), store, logger.NewWithWriter("error", io.Discard), Options{
		Metrics: metrics.New(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(1), b.Load())
	assert.ElementsMatch(t, []string{"occupations", "prefix_maps"}, stats.Succeeded)
	assert.Empty(t, stats.Failed)
}

func TestRun_FailureDoesNotCancelOthers(t *testing.T) {
	t.Parallel()

	boom := errors.New("bucket unreachable")
	var a, b atomic.Int32
	store := fakeTasker{tasks: []refdata.WarmTask{
		countingTask("occupations", &a, boom),
		countingTask("prefix_maps", &b, nil),
	}}

	stats, err := Run(context.Background(), store, logger.NewWithWriter("error", io.Discard), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "occupations")
	assert.Equal(t, int32(1), b.Load())
	assert.Equal(t, []string{"occupations"}, stats.Failed)
	assert.Equal(t, []string{"prefix_maps"}, stats.Succeeded)
}

func TestRun_OnlySelectedTasks(t *testing.T) {
	t.Parallel()

	var a, b atomic.Int32
	store := fakeTasker{tasks: []refdata.WarmTask{
		countingTask("occupations", &a, nil),
		countingTask("search_index", &b, nil),
	}}

	stats, err := Run(context.Background(), store, logger.NewWithWriter("error", io.Discard), Options{
		Only: []string{"search_index", "unknown"},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(0), a.Load())
	assert.Equal(t, int32(1), b.Load())
	assert.Equal(t, []string{"search_index"}, stats.Succeeded)
}

func TestRun_StoreTasks(t *testing.T) {
	t.Parallel()

	// An empty source fails every document, which must surface as a joined error.
	store := refdata.NewStore(refdata.NewMemorySource(nil))
	stats, err := Run(context.Background(), store, logger.NewWithWriter("error", io.Discard), Options{})
	require.Error(t, err)
	assert.Len(t, stats.Failed, len(store.WarmTasks()))
}
