package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/alexanderramin/reqplan/internal/runstore"
)

// UploadOptions bounds accepted documents and the summary wait.
type UploadOptions struct {
	MaxBytes        int64
	Extensions      []string
	PollInterval    time.Duration
	MaxPollAttempts int
}

func DefaultUploadOptions() UploadOptions {
	return UploadOptions{
		MaxBytes:        10 << 20,
		Extensions:      []string{".pdf", ".docx", ".doc"},
		PollInterval:    2 * time.Second,
		MaxPollAttempts: 30,
	}
}

type uploadService struct {
	backend  RunsBackend
	store    *runstore.Store
	opts     UploadOptions
	observer UseCaseObserver
	now      func() time.Time
	wait     func(ctx context.Context, d time.Duration) error
}

func NewUploadService(b RunsBackend, store *runstore.Store, opts UploadOptions, observers ...UseCaseObserver) UploadService {
	return &uploadService{
		backend:  b,
		store:    store,
		opts:     opts,
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
		wait:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CheckFile validates a document's extension and size before upload.
func (o UploadOptions) CheckFile(name string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	allowed := false
	for _, e := range o.Extensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w %q: please upload a PDF or Word document (%s)", ErrUnsupportedFile, ext, strings.Join(o.Extensions, ", "))
	}
	if o.MaxBytes > 0 && size > o.MaxBytes {
		return fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, name, size, o.MaxBytes)
	}
	return nil
}

func (s *uploadService) Upload(ctx context.Context, path string) (run domain.Run, err error) {
	fields := map[string]any{"file": filepath.Base(path)}
	defer track(ctx, s.observer, "upload", fields)(&err)

	info, err := os.Stat(path)
	if err != nil {
		return domain.Run{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return domain.Run{}, fmt.Errorf("%s is a directory", path)
	}
	fields["size"] = info.Size()
	if err = s.opts.CheckFile(info.Name(), info.Size()); err != nil {
		return domain.Run{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.Run{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	resp, err := s.backend.Upload(ctx, info.Name(), f)
	if err != nil {
		return domain.Run{}, fmt.Errorf("uploading %s: %w", info.Name(), err)
	}
	if resp.DocumentID == "" {
		return domain.Run{}, fmt.Errorf("uploading %s: backend returned no document id", info.Name())
	}
	fields["run_id"] = resp.DocumentID

	run = domain.NewUploadedRun(resp.DocumentID, domain.CoalesceStr(resp.FileName, info.Name()), info.Size(), s.now())
	if err = s.store.AddRun(ctx, run); err != nil {
		return domain.Run{}, err
	}
	if err = s.store.SelectRun(ctx, &run); err != nil {
		return domain.Run{}, err
	}
	return run, nil
}

func (s *uploadService) WaitForSummary(ctx context.Context, runID string, onPoll PollFunc) (run domain.Run, err error) {
	fields := map[string]any{"run_id": runID}
	defer track(ctx, s.observer, "wait-summary", fields)(&err)

	if onPoll == nil {
		onPoll = func(int, domain.Run, error) {}
	}
	for attempt := 1; attempt <= s.opts.MaxPollAttempts; attempt++ {
		fields["attempts"] = attempt
		if err = s.wait(ctx, s.opts.PollInterval); err != nil {
			return domain.Run{}, err
		}

		fetched, pollErr := s.backend.GetRun(ctx, runID)
		if pollErr != nil {
			if ctx.Err() != nil {
				return domain.Run{}, ctx.Err()
			}
			onPoll(attempt, domain.Run{}, pollErr)
			continue
		}
		if fetched.ID == "" {
			fetched.ID = runID
		}
		run = fetched
		if _, ok := s.store.Run(runID); ok {
			if err = s.store.UpdateRun(ctx, runID, domain.PatchFromRun(run)); err != nil {
				return run, err
			}
		}
		onPoll(attempt, run, nil)

		switch run.Steps.Summary.Status {
		case domain.StepCompleted:
			return run, nil
		case domain.StepFailed:
			return run, ErrSummaryFailed
		}
	}
	return run, fmt.Errorf("%w after %d attempts", ErrPollExhausted, s.opts.MaxPollAttempts)
}
