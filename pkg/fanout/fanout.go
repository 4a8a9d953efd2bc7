// Package fanout issues many independent API requests concurrently and
// aggregates per-request outcomes.
package fanout

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for fan-out operations.
var (
	fanoutTasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cbioportal_fanout_tasks_total",
		Help: "Total fan-out tasks by outcome",
	}, []string{"outcome"})

	fanoutDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cbioportal_fanout_duration_seconds",
		Help:    "Wall-clock duration of whole fan-out calls",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 120},
	})
)

// DefaultBatchSize is the fixed batch size for batched fetches. The
// upstream bulk endpoints handle batches of this size better than very
// large single requests.
const DefaultBatchSize = 100

// Config holds fan-out configuration.
type Config struct {
	// MaxConcurrency bounds the number of requests in flight at once.
	MaxConcurrency int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 10,
	}
}

// Result is the outcome of one fan-out task: either Data or Err is set.
type Result struct {
	Key  string
	Data map[string]any
	Err  error
}

// Success reports whether the task produced data.
func (r Result) Success() bool {
	return r.Err == nil
}

// MarshalJSON renders the success payload directly, and failures as
// {"error": "..."} placeholders, which is the wire shape tool callers
// expect.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(map[string]string{"error": r.Err.Error()})
	}
	return json.Marshal(r.Data)
}

// Meta summarizes one fan-out call.
type Meta struct {
	// Count is the number of input keys for per-key fetches, and the
	// number of re-keyed records for batched fetches.
	Count int `json:"count"`

	// TotalRequested is the number of input keys (batched mode only).
	TotalRequested int `json:"total_requested,omitempty"`

	// Errors is the number of failed tasks or batches.
	Errors int `json:"errors"`

	// ExecutionTime is the wall-clock duration in seconds.
	ExecutionTime float64 `json:"execution_time"`

	// Concurrent is always true; kept for response compatibility.
	Concurrent bool `json:"concurrent"`

	// Batches is the number of batches issued (batched mode only).
	Batches int `json:"batches,omitempty"`
}

// Aggregate is the combined outcome of a fan-out call. Results holds
// one entry per input key (per-key mode) or per successfully re-keyed
// record (batched mode). It is built fresh per call and never reused.
type Aggregate struct {
	Results map[string]Result
	Meta    Meta
}

// KeyFetchFunc fetches the data for a single key.
type KeyFetchFunc func(ctx context.Context, key string) (map[string]any, error)

// BatchFetchFunc fetches the records for one batch of keys.
type BatchFetchFunc func(ctx context.Context, batch []string) ([]map[string]any, error)

// FanOut runs independent fetches concurrently with bounded
// parallelism.
type FanOut struct {
	config Config
	logger zerolog.Logger
}

// New creates a fan-out runner.
func New(cfg Config) *FanOut {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	return &FanOut{
		config: cfg,
		logger: log.With().Str("component", "fanout").Logger(),
	}
}

// FetchKeys issues one fetch per key and aggregates the outcomes.
// Every input key appears exactly once in the result map, whether its
// fetch succeeded or failed; one task's failure never cancels its
// siblings. The call returns only after every task has settled. An
// empty key list short-circuits without issuing any request.
func (f *FanOut) FetchKeys(ctx context.Context, keys []string, fetch KeyFetchFunc) Aggregate {
	start := time.Now()

	if len(keys) == 0 {
		return Aggregate{
			Results: map[string]Result{},
			Meta:    Meta{Concurrent: true, ExecutionTime: roundSeconds(time.Since(start))},
		}
	}

	// Each task writes only its own slot; the merge happens after the
	// joint wait, so no locking is needed.
	results := make([]Result, len(keys))
	sem := make(chan struct{}, f.config.MaxConcurrency)
	var wg sync.WaitGroup

	for i, key := range keys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			data, err := fetch(ctx, key)
			results[i] = Result{Key: key, Data: data, Err: err}
		}(i, key)
	}
	wg.Wait()

	merged := make(map[string]Result, len(keys))
	errCount := 0
	for _, r := range results {
		if r.Err != nil {
			errCount++
			fanoutTasksTotal.WithLabelValues("error").Inc()
			f.logger.Warn().
				Err(r.Err).
				Str("key", r.Key).
				Msg("Fan-out task failed")
		} else {
			fanoutTasksTotal.WithLabelValues("success").Inc()
		}
		merged[r.Key] = r
	}

	duration := time.Since(start)
	fanoutDurationSeconds.Observe(duration.Seconds())

	f.logger.Debug().
		Int("keys", len(keys)).
		Int("errors", errCount).
		Dur("duration", duration).
		Msg("Fan-out complete")

	return Aggregate{
		Results: merged,
		Meta: Meta{
			Count:         len(keys),
			Errors:        errCount,
			ExecutionTime: roundSeconds(duration),
			Concurrent:    true,
		},
	}
}

// FetchBatched splits keys into fixed-size batches, issues one fetch
// per batch concurrently, then flattens the returned records and
// re-keys them by keyField. Records missing keyField are dropped; the
// upstream bulk endpoints key results by a field inside each record,
// so unmatched records cannot be mapped back to an input key. A failed
// batch contributes nothing to the map and one error to the count.
func (f *FanOut) FetchBatched(ctx context.Context, keys []string, batchSize int, keyField string, fetch BatchFetchFunc) Aggregate {
	start := time.Now()

	if len(keys) == 0 {
		return Aggregate{
			Results: map[string]Result{},
			Meta: Meta{
				Concurrent:    true,
				ExecutionTime: roundSeconds(time.Since(start)),
			},
		}
	}

	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	batches := chunk(keys, batchSize)

	type batchOutcome struct {
		records []map[string]any
		err     error
	}
	outcomes := make([]batchOutcome, len(batches))
	sem := make(chan struct{}, f.config.MaxConcurrency)
	var wg sync.WaitGroup

	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch []string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			records, err := fetch(ctx, batch)
			outcomes[i] = batchOutcome{records: records, err: err}
		}(i, batch)
	}
	wg.Wait()

	merged := make(map[string]Result)
	errCount := 0
	dropped := 0
	for i, outcome := range outcomes {
		if outcome.err != nil {
			errCount++
			fanoutTasksTotal.WithLabelValues("error").Inc()
			f.logger.Warn().
				Err(outcome.err).
				Int("batch", i).
				Int("batch_size", len(batches[i])).
				Msg("Batch fetch failed")
			continue
		}
		fanoutTasksTotal.WithLabelValues("success").Inc()

		for _, record := range outcome.records {
			key := keyString(record[keyField])
			if key == "" {
				dropped++
				continue
			}
			merged[key] = Result{Key: key, Data: record}
		}
	}

	if dropped > 0 {
		f.logger.Warn().
			Int("dropped", dropped).
			Str("key_field", keyField).
			Msg("Records without key field dropped during re-keying")
	}

	duration := time.Since(start)
	fanoutDurationSeconds.Observe(duration.Seconds())

	f.logger.Debug().
		Int("keys", len(keys)).
		Int("batches", len(batches)).
		Int("errors", errCount).
		Dur("duration", duration).
		Msg("Batched fan-out complete")

	return Aggregate{
		Results: merged,
		Meta: Meta{
			Count:          len(merged),
			TotalRequested: len(keys),
			Errors:         errCount,
			ExecutionTime:  roundSeconds(duration),
			Concurrent:     true,
			Batches:        len(batches),
		},
	}
}

// chunk splits keys into slices of at most size elements, preserving
// order.
func chunk(keys []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		batches = append(batches, keys[start:end])
	}
	return batches
}

// keyString renders a record field as a map key. JSON numbers decode
// as float64; integral values (entrez gene IDs) are formatted without
// a decimal point.
func keyString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == math.Trunc(val) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}

// roundSeconds reports a duration in seconds at millisecond precision.
func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
