package preflight

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"milelog/internal/config"
	"milelog/internal/deps"
	"milelog/internal/faults"
	"milelog/internal/fleet"
	"milelog/internal/logging"
	"milelog/internal/records"
	"milelog/internal/recordstore"
)

// CheckConfig verifies that the configuration validates and the fleet
// registry can be built from it.
func CheckConfig(cfg *config.Config) Result {
	const name = "Configuration"
	if err := cfg.Validate(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	reg, err := fleet.FromConfig(cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d vehicles registered", len(reg.Vehicles()))}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStore opens the record store and loads it under the shared lock.
// Malformed contents pass with a warning detail since they load as empty.
func CheckStore(ctx context.Context, cfg *config.Config) Result {
	const name = "Record store"

	checkCtx, cancel := context.WithTimeout(ctx, cfg.LockTimeout()+time.Second)
	defer cancel()

	store, err := recordstore.Open(checkCtx, cfg, logging.NewNop())
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.Storage.Path, err)}
	}
	defer store.Close()

	items, err := store.Load(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s)", cfg.Storage.Path, faults.Diagnostic(err))}
	}
	counts := records.CountByClass(items)
	resolved := len(records.Resolved(items))
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%s, %d records: %d personal, %d cargo, %d resolved)",
			cfg.Storage.Path, store.Backend(), len(items),
			counts[records.ClassPersonal], counts[records.ClassCargo], resolved),
	}
}

// CheckSystemDeps evaluates the optional external programs.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	return deps.CheckOCR(ctx, cfg.TesseractBinary())
}
