package ingest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"milelog/internal/ingest"
	"milelog/internal/records"
)

func fixedReader(values map[string][]int64) ingest.MileageFunc {
	return func(_ context.Context, source string) ([]int64, error) {
		if v, ok := values[filepath.Base(source)]; ok {
			return v, nil
		}
		return nil, errors.New("no such image")
	}
}

func TestFilenameTimestamps(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		want    string
		wantErr bool
	}{
		{name: "camera", source: "/photos/IMG_20240315_081530.jpg", want: "2024-03-15 08:15:30"},
		{name: "bare", source: "20231231_235959.png", want: "2023-12-31 23:59:59"},
		{name: "missing", source: "odometer.jpg", wantErr: true},
		{name: "invalid month", source: "20241301_000000.jpg", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ingest.FilenameTimestamps{}.ReadTimestamp(tt.source)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadTimestamp: %v", err)
			}
			if s := got.Format("2006-01-02 15:04:05"); s != tt.want {
				t.Fatalf("got %s, want %s", s, tt.want)
			}
		})
	}
}

func TestPipelineStatuses(t *testing.T) {
	p := &ingest.Pipeline{
		Timestamps: ingest.FilenameTimestamps{},
		Mileage: fixedReader(map[string][]int64{
			"20240101_100000.jpg": {123456},
			"20240102_100000.jpg": nil,
			"20240103_100000.jpg": {111111, 222222},
		}),
		Classes: ingest.StaticClassifier{Class: records.ClassCargo},
	}
	sources := []ingest.Source{
		{Path: "20240101_100000.jpg"},
		{Path: "20240102_100000.jpg"},
		{Path: "20240103_100000.jpg"},
		{Path: "20240104_100000.jpg"},
	}
	readings, err := p.ProcessAll(context.Background(), sources)
	if err != nil {
		t.Fatal(err)
	}
	want := []ingest.Status{ingest.StatusOK, ingest.StatusUnreadable, ingest.StatusAmbiguous, ingest.StatusFailed}
	for i, r := range readings {
		if r.Status != want[i] {
			t.Fatalf("reading %d status = %s, want %s", i, r.Status, want[i])
		}
	}
	stored := ingest.Records(readings)
	if len(stored) != 1 {
		t.Fatalf("expected one stored record, got %d", len(stored))
	}
	rec := stored[0]
	if rec.Mileage != 123456 || rec.Class != records.ClassCargo || rec.Identity != records.IdentityUnknown {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Date() != "2024-01-01" || rec.Clock() != "10:00:00" {
		t.Fatalf("unexpected timestamp %s %s", rec.Date(), rec.Clock())
	}
	summary := ingest.Summary(readings)
	if summary[ingest.StatusOK] != 1 || summary[ingest.StatusAmbiguous] != 1 {
		t.Fatalf("summary = %v", summary)
	}
}

func TestPipelineAcceptFirstCandidate(t *testing.T) {
	p := &ingest.Pipeline{
		Mileage:     fixedReader(map[string][]int64{"x.jpg": {111111, 222222}}),
		AcceptFirst: true,
	}
	r := p.Process(context.Background(), ingest.Source{Path: "x.jpg"})
	if r.Status != ingest.StatusOK || r.Record.Mileage != 111111 {
		t.Fatalf("unexpected reading %+v", r)
	}
}

func TestPipelineSyntheticTimestamp(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 500, time.UTC)
	p := &ingest.Pipeline{
		Timestamps: ingest.FilenameTimestamps{},
		Mileage:    fixedReader(map[string][]int64{"odometer.jpg": {42}}),
		Now:        func() time.Time { return now },
	}
	r := p.Process(context.Background(), ingest.Source{Path: "odometer.jpg"})
	if !r.TimeSynthetic {
		t.Fatal("expected synthetic timestamp")
	}
	if !r.Record.ObservedAt.Equal(now.Truncate(time.Second)) {
		t.Fatalf("observed at %s", r.Record.ObservedAt)
	}
}

func TestPipelineClassOverride(t *testing.T) {
	p := &ingest.Pipeline{
		Mileage: fixedReader(map[string][]int64{"x.jpg": {42}}),
		Classes: ingest.StaticClassifier{Class: records.ClassCargo},
	}
	r := p.Process(context.Background(), ingest.Source{Path: "x.jpg", Class: records.ClassPersonal, Notes: "manual"})
	if r.Record.Class != records.ClassPersonal || r.Record.Notes != "manual" {
		t.Fatalf("unexpected record %+v", r.Record)
	}
	r = (&ingest.Pipeline{Mileage: p.Mileage}).Process(context.Background(), ingest.Source{Path: "x.jpg"})
	if r.Record.Class != records.ClassUnknown {
		t.Fatalf("expected unknown class without classifier, got %s", r.Record.Class)
	}
}

func TestProcessAllStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &ingest.Pipeline{Mileage: fixedReader(nil)}
	readings, err := p.ProcessAll(ctx, []ingest.Source{{Path: "a.jpg"}})
	if !errors.Is(err, context.Canceled) || len(readings) != 0 {
		t.Fatalf("expected cancellation, got %v with %d readings", err, len(readings))
	}
}

func TestDiscoverFindsImages(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.JPG", "a.png", "notes.txt", filepath.Join("sub", "c.jpeg")} {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got, err := ingest.Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{filepath.Join(root, "a.png"), filepath.Join(root, "b.JPG"), filepath.Join(root, "sub", "c.jpeg")}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestCopyRejectedSortsByStatus(t *testing.T) {
	src := t.TempDir()
	write := func(name string) string {
		path := filepath.Join(src, name)
		if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	readings := []ingest.Reading{
		{Source: ingest.Source{Path: write("ok.jpg")}, Status: ingest.StatusOK},
		{Source: ingest.Source{Path: write("blank.jpg")}, Status: ingest.StatusUnreadable},
		{Source: ingest.Source{Path: write("double.jpg")}, Status: ingest.StatusAmbiguous},
		{Source: ingest.Source{Path: write("broken.jpg")}, Status: ingest.StatusFailed},
	}
	dir := filepath.Join(t.TempDir(), "errors")

	copied, err := ingest.CopyRejected(readings, dir)
	if err != nil {
		t.Fatalf("CopyRejected: %v", err)
	}
	want := map[int]string{
		1: filepath.Join(dir, "unreadable", "blank.jpg"),
		2: filepath.Join(dir, "multi_read", "double.jpg"),
	}
	if len(copied) != len(want) {
		t.Fatalf("copied = %v, want %v", copied, want)
	}
	for i, dest := range want {
		if copied[i] != dest {
			t.Fatalf("reading %d copied to %q, want %q", i, copied[i], dest)
		}
		data, err := os.ReadFile(dest)
		if err != nil || string(data) != filepath.Base(dest) {
			t.Fatalf("copy %s: %q %v", dest, data, err)
		}
	}
	if _, err := os.Stat(readings[1].Source.Path); err != nil {
		t.Fatalf("source should stay in place: %v", err)
	}
}
