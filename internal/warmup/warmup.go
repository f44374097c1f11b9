// Package warmup preloads reference documents at startup so the first
// recommendation request does not pay for a cold object-storage fetch.
package warmup

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/garyellow/programme-matcher/internal/logger"
	"github.com/garyellow/programme-matcher/internal/metrics"
	"github.com/garyellow/programme-matcher/internal/refdata"
)

// Tasker exposes the warm tasks of a reference store.
type Tasker interface {
	WarmTasks() []refdata.WarmTask
}

// Stats reports the outcome of one warmup run.
type Stats struct {
	mu        sync.Mutex
	Succeeded []string
	Failed    []string
	Duration  time.Duration
}

func (s *Stats) record(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.Failed = append(s.Failed, name)
		return
	}
	s.Succeeded = append(s.Succeeded, name)
}

// Options configures a warmup run.
type Options struct {
	Only    []string         // Task names to run; empty runs every task
	Metrics *metrics.Metrics // Optional metrics recorder
}

// Run executes the store's warm tasks concurrently. A failing task does not
// cancel the others; every failure is joined into the returned error.
func Run(ctx context.Context, store Tasker, log *logger.Logger, opts Options) (*Stats, error) {
	stats := &Stats{}
	start := time.Now()

	tasks, unknown := selectTasks(store.WarmTasks(), opts.Only)
	for _, name := range unknown {
		log.WithField("task", name).Warn("Unknown warmup task, skipping")
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, task := range tasks {
		g.Go(func() error {
			taskStart := time.Now()
			err := task.Run(ctx)
			stats.record(task.Name, err)

			if err != nil {
				opts.Metrics.RecordWarmupTask(task.Name, "error")
				log.WithError(err).WithField("task", task.Name).Error("Warmup task failed")
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", task.Name, err))
				mu.Unlock()
				return nil
			}

			opts.Metrics.RecordWarmupTask(task.Name, "success")
			log.WithFields(map[string]any{
				"task":        task.Name,
				"duration_ms": time.Since(taskStart).Milliseconds(),
			}).Debug("Warmup task complete")
			return nil
		})
	}
	_ = g.Wait()

	stats.Duration = time.Since(start)
	opts.Metrics.RecordWarmupDuration(stats.Duration.Seconds())

	if ctx.Err() != nil {
		errs = append(errs, fmt.Errorf("warmup canceled: %w", ctx.Err()))
	}
	if len(errs) > 0 {
		return stats, errors.Join(errs...)
	}

	log.WithFields(map[string]any{
		"tasks":       len(stats.Succeeded),
		"duration_ms": stats.Duration.Milliseconds(),
	}).Info("Reference warmup complete")
	return stats, nil
}

// ParseTasks splits a comma-separated task list, trimming blanks.
func ParseTasks(input string) []string {
	if input == "" {
		return []string{}
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func selectTasks(all []refdata.WarmTask, only []string) (selected []refdata.WarmTask, unknown []string) {
	if len(only) == 0 {
		return all, nil
	}
	for _, t := range all {
		if slices.Contains(only, t.Name) {
			selected = append(selected, t)
		}
	}
	for _, name := range only {
		if !slices.ContainsFunc(all, func(t refdata.WarmTask) bool { return t.Name == name }) {
			unknown = append(unknown, name)
		}
	}
	return selected, unknown
}
