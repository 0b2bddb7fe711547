package journal

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func sample(ts time.Time) []Record {
	return []Record{
		{Timestamp: ts, ExecutionID: "e1", Kind: "switch_status", Target: "feeder_001", Operator: "disp_1", Action: ActionExecute, OK: true},
		{Timestamp: ts.Add(time.Second), ExecutionID: "e1", Kind: "switch_status", Target: "feeder_001", Operator: "disp_1", Action: ActionUndo, OK: true},
		{Timestamp: ts.Add(2 * time.Second), ExecutionID: "e2", Kind: "load_reduction", Target: "network", Action: ActionExecute, OK: false, Error: "boom"},
	}
}

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	ts := time.Unix(1700000000, 0)
	for _, r := range sample(ts) {
		if err := s.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	all, err := s.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if all[2].Error != "boom" || all[2].OK {
		t.Fatalf("unexpected last record %+v", all[2])
	}
	byTarget, _ := s.Query(ctx, Query{Target: "feeder_001"})
	if len(byTarget) != 2 {
		t.Fatalf("expected 2 records for feeder_001, got %d", len(byTarget))
	}
	byKind, _ := s.Query(ctx, Query{Kind: "load_reduction"})
	if len(byKind) != 1 {
		t.Fatalf("expected 1 load_reduction record, got %d", len(byKind))
	}
	window, _ := s.Query(ctx, Query{Start: ts.Add(500 * time.Millisecond), End: ts.Add(1500 * time.Millisecond)})
	if len(window) != 1 || window[0].Action != ActionUndo {
		t.Fatalf("unexpected window result %+v", window)
	}
}

func TestJSONLStore(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "journal.jsonl"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()
	exercise(t, s)
}

func TestRotatingJSONLStore(t *testing.T) {
	s, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "logs", "journal.jsonl"), 1, 2, 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()
	exercise(t, s)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore("file:journal_test.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()
	exercise(t, s)
}

func TestOpen(t *testing.T) {
	s, err := Open(Options{})
	if err != nil {
		t.Fatalf("open nop: %v", err)
	}
	if _, ok := s.(Nop); !ok {
		t.Fatalf("expected Nop, got %T", s)
	}
	s, err = Open(Options{Backend: "jsonl", Path: filepath.Join(t.TempDir(), "j.jsonl"), MaxSizeMB: 5})
	if err != nil {
		t.Fatalf("open rotating: %v", err)
	}
	if _, ok := s.(*RotatingJSONLStore); !ok {
		t.Fatalf("expected rotating store, got %T", s)
	}
	if _, err := Open(Options{Backend: "postgres"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestRecordJSON(t *testing.T) {
	data, err := json.Marshal(Record{Timestamp: time.Unix(0, 0), Kind: "switch_status", Action: ActionExecute})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"timestamp", "execution_id", "kind", "target", "action", "ok"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %s", k)
		}
	}
	if _, ok := m["error"]; ok {
		t.Errorf("empty error should be omitted")
	}
}
