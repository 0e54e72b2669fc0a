package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/ontolens/internal/pipeline"
)

// Runner runs one extraction
type Runner interface {
	Run(ctx context.Context, location string, n int) (*pipeline.RunResult, error)
}

// RunJob extracts key concepts from one location
type RunJob struct {
	Index    int // Position in the batch input
	Location string
	N        int
	Runner   Runner
}

// Execute executes the run job
func (j *RunJob) Execute(ctx context.Context) *RunOutcome {
	result, err := j.Runner.Run(ctx, j.Location, j.N)
	return &RunOutcome{
		Index:    j.Index,
		Location: j.Location,
		Result:   result,
		Error:    err,
	}
}

// RunOutcome represents the result of a run job
type RunOutcome struct {
	Index    int
	Location string
	Result   *pipeline.RunResult
	Error    error
}

// BatchProcessor runs extractions for many locations concurrently. Every run
// builds and scores its own tree.
type BatchProcessor struct {
	runner      Runner
	concurrency int
	n           int
}

// NewBatchProcessor creates a batch processor selecting n concepts per location
func NewBatchProcessor(runner Runner, concurrency, n int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
		n:           n,
	}
}

// ProcessLocations runs every location and returns outcomes in input order
func (b *BatchProcessor) ProcessLocations(ctx context.Context, locations []string) []*RunOutcome {
	if len(locations) == 0 {
		return []*RunOutcome{}
	}

	pool := NewPool[*RunOutcome](ctx, b.concurrency)
	for i, location := range locations {
		job := &RunJob{
			Index:    i,
			Location: location,
			N:        b.n,
			Runner:   b.runner,
		}
		pool.Submit(job.Execute)
	}
	return pool.Wait()
}

// ProcessFile reads locations from a file and runs them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*RunOutcome, error) {
	locations, err := ReadLocationsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read locations: %w", err)
	}

	return b.ProcessLocations(ctx, locations), nil
}

// ReadLocationsFromFile reads endpoint URLs or file paths, one per line.
// Blank lines and # comments are skipped and duplicates dropped.
func ReadLocationsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var locations []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			locations = append(locations, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return locations, nil
}
