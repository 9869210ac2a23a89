package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/young626-jang/ltv-flask/internal/domain"
)

// TaskError accumulates the per-document failures of a bulk run.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	parts := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		parts = append(parts, err.Error())
	}
	return fmt.Sprintf("%d documents failed: %s", len(e.Errors), strings.Join(parts, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BulkAnalyzer analyses many documents with a fixed pool of workers.
type BulkAnalyzer struct {
	service *AnalysisService
	workers int
}

// NewBulkAnalyzer creates a BulkAnalyzer with the provided concurrency.
func NewBulkAnalyzer(service *AnalysisService, workers int) *BulkAnalyzer {
	if workers <= 0 {
		workers = 4
	}
	return &BulkAnalyzer{
		service: service,
		workers: workers,
	}
}

// AnalyzeAll analyses every input. Results line up with inputs; a failed
// document leaves a zero Analysis in its slot and its error in the returned
// TaskError.
func (ba *BulkAnalyzer) AnalyzeAll(ctx context.Context, inputs []AnalyzeInput) ([]domain.Analysis, error) {
	results := make([]domain.Analysis, len(inputs))
	err := ba.run(ctx, len(inputs), func(idx int) error {
		a, err := ba.service.Analyze(ctx, inputs[idx])
		if err != nil {
			return fmt.Errorf("%s: %w", inputs[idx].SourceName, err)
		}
		results[idx] = a
		return nil
	})
	return results, err
}

func (ba *BulkAnalyzer) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	for i := 0; i < min(ba.workers, total); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				if err := workerFn(idx); err != nil {
					errCh <- err
				}
			}
		}()
	}

	var cancelled error
Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			cancelled = ctx.Err()
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if cancelled != nil {
		return cancelled
	}
	var taskErr TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
