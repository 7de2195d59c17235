package preflight_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"milelog/internal/preflight"
	"milelog/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	if r := preflight.CheckDirectoryAccess("Data", dir); !r.Passed {
		t.Fatalf("expected writable temp dir to pass: %+v", r)
	}

	missing := filepath.Join(dir, "missing")
	r := preflight.CheckDirectoryAccess("Data", missing)
	if r.Passed || !strings.Contains(r.Detail, "does not exist") {
		t.Fatalf("expected missing directory to fail: %+v", r)
	}

	file := filepath.Join(dir, "file")
	testsupport.WriteFile(t, file, []byte("x"))
	r = preflight.CheckDirectoryAccess("Data", file)
	if r.Passed || !strings.Contains(r.Detail, "not a directory") {
		t.Fatalf("expected file to fail: %+v", r)
	}
}

func TestRunAllOnFreshConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := preflight.RunAll(context.Background(), cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if failed := preflight.Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
	store := results[len(results)-1]
	if store.Name != "Record store" || !strings.Contains(store.Detail, "0 records") {
		t.Fatalf("unexpected store result %+v", store)
	}
}

func TestCheckStoreCountsRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSQLite())
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.Seed(t, store, testsupport.CargoScenario(t))

	r := preflight.CheckStore(context.Background(), cfg)
	if !r.Passed {
		t.Fatalf("expected store check to pass: %+v", r)
	}
	for _, want := range []string{"sqlite", "4 records", "4 cargo", "0 resolved"} {
		if !strings.Contains(r.Detail, want) {
			t.Fatalf("expected %q in %q", want, r.Detail)
		}
	}
}

func TestRunAllReportsMissingLogDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if err := os.RemoveAll(cfg.Paths.LogDir); err != nil {
		t.Fatalf("remove log dir: %v", err)
	}

	failed := preflight.Failed(preflight.RunAll(context.Background(), cfg))
	if len(failed) != 1 || failed[0].Name != "Log directory" {
		t.Fatalf("expected only log directory to fail, got %+v", failed)
	}
}

func TestCheckSystemDepsReportsTesseractOptional(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	statuses := preflight.CheckSystemDeps(context.Background(), cfg)
	if len(statuses) == 0 || statuses[0].Name != "Tesseract" {
		t.Fatalf("unexpected statuses %+v", statuses)
	}
	if !statuses[0].Available || !statuses[0].Optional {
		t.Fatalf("expected stubbed tesseract to be available and optional: %+v", statuses[0])
	}
}
