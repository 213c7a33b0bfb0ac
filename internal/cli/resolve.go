package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/reqplan/internal/backend"
	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/alexanderramin/reqplan/internal/service"
)

// resolveRun maps an optional [run] argument to a run. A ref the cache
// does not know is looked up on the backend, so full ids from elsewhere
// still work.
func resolveRun(ctx context.Context, app *App, args []string) (domain.Run, error) {
	ref := ""
	if len(args) > 0 {
		ref = args[0]
	}
	run, err := app.Runs.Resolve(ref)
	if err == nil || ref == "" || !errors.Is(err, service.ErrRunNotFound) {
		if errors.Is(err, service.ErrNoRunSelected) {
			return domain.Run{}, errors.New("no run selected: pass a run id or use 'reqplan runs select <id>'")
		}
		return run, err
	}
	fetched, showErr := app.Runs.Show(ctx, ref)
	if errors.Is(showErr, backend.ErrNotFound) {
		return domain.Run{}, err
	}
	if showErr != nil {
		return domain.Run{}, fmt.Errorf("looking up run %s: %w", ref, showErr)
	}
	return fetched, nil
}
