package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestFetchKeys(t *testing.T) {
	f := New(DefaultConfig())

	keys := []string{"study_a", "study_b", "study_c", "study_d"}
	agg := f.FetchKeys(context.Background(), keys, func(ctx context.Context, key string) (map[string]any, error) {
		return map[string]any{"studyId": key}, nil
	})

	if len(agg.Results) != len(keys) {
		t.Fatalf("got %d results, want %d", len(agg.Results), len(keys))
	}
	for _, key := range keys {
		r, ok := agg.Results[key]
		if !ok {
			t.Fatalf("key %q missing from results", key)
		}
		if !r.Success() {
			t.Errorf("key %q failed: %v", key, r.Err)
		}
		if r.Data["studyId"] != key {
			t.Errorf("key %q data = %v", key, r.Data)
		}
	}

	if agg.Meta.Count != 4 || agg.Meta.Errors != 0 {
		t.Errorf("Meta = %+v, want count 4, errors 0", agg.Meta)
	}
	if !agg.Meta.Concurrent {
		t.Error("Meta.Concurrent = false")
	}
	if agg.Meta.Batches != 0 {
		t.Errorf("Meta.Batches = %d, want 0 in per-key mode", agg.Meta.Batches)
	}
}

func TestFetchKeysPartialFailure(t *testing.T) {
	f := New(DefaultConfig())

	agg := f.FetchKeys(context.Background(), []string{"A", "B", "C"}, func(ctx context.Context, key string) (map[string]any, error) {
		if key == "B" {
			return nil, errors.New("study not found")
		}
		return map[string]any{"studyId": key}, nil
	})

	if !agg.Results["A"].Success() || !agg.Results["C"].Success() {
		t.Error("siblings of the failed task should succeed")
	}
	if agg.Results["B"].Success() {
		t.Error("failed task reported as success")
	}
	if agg.Meta.Count != 3 || agg.Meta.Errors != 1 {
		t.Errorf("Meta = %+v, want count 3, errors 1", agg.Meta)
	}
}

func TestFetchKeysEmpty(t *testing.T) {
	f := New(DefaultConfig())

	called := false
	agg := f.FetchKeys(context.Background(), nil, func(ctx context.Context, key string) (map[string]any, error) {
		called = true
		return nil, nil
	})

	if called {
		t.Error("fetch invoked for empty input")
	}
	if agg.Results == nil || len(agg.Results) != 0 {
		t.Errorf("Results = %v, want empty map", agg.Results)
	}
	if agg.Meta.Count != 0 || agg.Meta.Errors != 0 {
		t.Errorf("Meta = %+v, want zero counts", agg.Meta)
	}
}

func TestFetchKeysBoundedConcurrency(t *testing.T) {
	f := New(Config{MaxConcurrency: 3})

	var inFlight, peak atomic.Int32
	var mu sync.Mutex

	keys := make([]string, 20)
	for i := range keys {
		keys[i] = fmt.Sprintf("key_%02d", i)
	}

	f.FetchKeys(context.Background(), keys, func(ctx context.Context, key string) (map[string]any, error) {
		n := inFlight.Add(1)
		mu.Lock()
		if n > peak.Load() {
			peak.Store(n)
		}
		mu.Unlock()
		defer inFlight.Add(-1)
		return map[string]any{}, nil
	})

	if p := peak.Load(); p > 3 {
		t.Errorf("peak concurrency = %d, want at most 3", p)
	}
}

func TestResultMarshalJSON(t *testing.T) {
	ok := Result{Key: "A", Data: map[string]any{"studyId": "A"}}
	data, err := json.Marshal(ok)
	if err != nil {
		t.Fatalf("marshal success result: %v", err)
	}
	if string(data) != `{"studyId":"A"}` {
		t.Errorf("success marshals to %s, want bare payload", data)
	}

	failed := Result{Key: "B", Err: errors.New("study not found")}
	data, err = json.Marshal(failed)
	if err != nil {
		t.Fatalf("marshal failed result: %v", err)
	}
	if string(data) != `{"error":"study not found"}` {
		t.Errorf("failure marshals to %s, want error envelope", data)
	}
}

func TestFetchBatched(t *testing.T) {
	f := New(DefaultConfig())

	// 250 keys with batch size 100 should produce batches of 100, 100
	// and 50.
	keys := make([]string, 250)
	for i := range keys {
		keys[i] = fmt.Sprintf("%d", i+1)
	}

	var mu sync.Mutex
	var batchSizes []int

	agg := f.FetchBatched(context.Background(), keys, 100, "entrezGeneId", func(ctx context.Context, batch []string) ([]map[string]any, error) {
		mu.Lock()
		batchSizes = append(batchSizes, len(batch))
		mu.Unlock()

		records := make([]map[string]any, len(batch))
		for i, id := range batch {
			var entrez float64
			fmt.Sscanf(id, "%f", &entrez)
			records[i] = map[string]any{"entrezGeneId": entrez, "hugoGeneSymbol": "GENE" + id}
		}
		return records, nil
	})

	if len(batchSizes) != 3 {
		t.Fatalf("issued %d batches, want 3", len(batchSizes))
	}
	total := 0
	for _, n := range batchSizes {
		total += n
		if n > 100 {
			t.Errorf("batch of %d exceeds the batch size", n)
		}
	}
	if total != 250 {
		t.Errorf("batches covered %d keys, want 250", total)
	}

	if len(agg.Results) != 250 {
		t.Fatalf("got %d re-keyed results, want 250", len(agg.Results))
	}
	// Numeric key fields are formatted without a decimal point.
	if r, ok := agg.Results["42"]; !ok || r.Data["hugoGeneSymbol"] != "GENE42" {
		t.Errorf("Results[42] = %+v, want GENE42 record", agg.Results["42"])
	}

	meta := agg.Meta
	if meta.Count != 250 || meta.TotalRequested != 250 || meta.Errors != 0 || meta.Batches != 3 {
		t.Errorf("Meta = %+v, want count 250, total 250, errors 0, batches 3", meta)
	}
}

func TestFetchBatchedPartialFailure(t *testing.T) {
	f := New(DefaultConfig())

	keys := make([]string, 250)
	for i := range keys {
		keys[i] = fmt.Sprintf("g%03d", i)
	}

	agg := f.FetchBatched(context.Background(), keys, 100, "id", func(ctx context.Context, batch []string) ([]map[string]any, error) {
		// The middle batch fails; identified by its first key.
		if batch[0] == "g100" {
			return nil, errors.New("bulk endpoint rejected the request")
		}
		records := make([]map[string]any, len(batch))
		for i, id := range batch {
			records[i] = map[string]any{"id": id}
		}
		return records, nil
	})

	// 100 from batch one, 50 from batch three.
	if len(agg.Results) != 150 {
		t.Errorf("got %d results, want 150 (failed batch contributes none)", len(agg.Results))
	}
	if _, ok := agg.Results["g150"]; ok {
		t.Error("key from the failed batch present in results")
	}
	if _, ok := agg.Results["g200"]; !ok {
		t.Error("key from the batch after the failure missing")
	}
	if agg.Meta.Errors != 1 || agg.Meta.Batches != 3 || agg.Meta.TotalRequested != 250 {
		t.Errorf("Meta = %+v, want errors 1, batches 3, total 250", agg.Meta)
	}
	if agg.Meta.Count != 150 {
		t.Errorf("Meta.Count = %d, want 150 (re-keyed records only)", agg.Meta.Count)
	}
}

func TestFetchBatchedDropsUnkeyedRecords(t *testing.T) {
	f := New(DefaultConfig())

	agg := f.FetchBatched(context.Background(), []string{"a", "b", "c"}, 100, "hugoGeneSymbol", func(ctx context.Context, batch []string) ([]map[string]any, error) {
		return []map[string]any{
			{"hugoGeneSymbol": "TP53"},
			{"entrezGeneId": 7157.0}, // missing the key field
			{"hugoGeneSymbol": "BRCA1"},
		}, nil
	})

	if len(agg.Results) != 2 {
		t.Fatalf("got %d results, want 2 (unkeyed record dropped)", len(agg.Results))
	}
	if _, ok := agg.Results["TP53"]; !ok {
		t.Error("TP53 missing from results")
	}
	if _, ok := agg.Results["BRCA1"]; !ok {
		t.Error("BRCA1 missing from results")
	}
	if agg.Meta.Count != 2 {
		t.Errorf("Meta.Count = %d, want 2", agg.Meta.Count)
	}
}

func TestFetchBatchedEmpty(t *testing.T) {
	f := New(DefaultConfig())

	agg := f.FetchBatched(context.Background(), nil, 100, "id", func(ctx context.Context, batch []string) ([]map[string]any, error) {
		t.Error("fetch invoked for empty input")
		return nil, nil
	})

	if len(agg.Results) != 0 || agg.Meta.Batches != 0 {
		t.Errorf("Aggregate = %+v, want empty", agg)
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		n    int
		size int
		want []int
	}{
		{0, 100, nil},
		{1, 100, []int{1}},
		{100, 100, []int{100}},
		{101, 100, []int{100, 1}},
		{250, 100, []int{100, 100, 50}},
	}

	for _, tt := range tests {
		keys := make([]string, tt.n)
		batches := chunk(keys, tt.size)
		if len(batches) != len(tt.want) {
			t.Errorf("chunk(%d, %d) produced %d batches, want %d", tt.n, tt.size, len(batches), len(tt.want))
			continue
		}
		for i, b := range batches {
			if len(b) != tt.want[i] {
				t.Errorf("chunk(%d, %d) batch %d has %d keys, want %d", tt.n, tt.size, i, len(b), tt.want[i])
			}
		}
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"TP53", "TP53"},
		{7157.0, "7157"},
		{1.5, "1.5"},
		{json.Number("672"), "672"},
		{nil, ""},
		{true, ""},
	}

	for _, tt := range tests {
		if got := keyString(tt.in); got != tt.want {
			t.Errorf("keyString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMetaJSONShape(t *testing.T) {
	data, err := json.Marshal(Meta{Count: 3, Errors: 1, ExecutionTime: 0.25, Concurrent: true})
	if err != nil {
		t.Fatalf("marshal meta: %v", err)
	}
	s := string(data)

	for _, field := range []string{`"count":3`, `"errors":1`, `"execution_time":0.25`, `"concurrent":true`} {
		if !strings.Contains(s, field) {
			t.Errorf("meta JSON %s missing %s", s, field)
		}
	}
	// Batched-only fields stay hidden in per-key mode.
	if strings.Contains(s, "batches") || strings.Contains(s, "total_requested") {
		t.Errorf("meta JSON %s leaks batched-only fields", s)
	}
}
