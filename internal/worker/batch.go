package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/aletheia/internal/model"
)

// Checker defines the interface for fact-checking one batch record
type Checker interface {
	CheckRecord(ctx context.Context, record model.CheckRecord) (*model.CheckReport, error)
}

// CheckJob represents one record's fact check. It carries the batch request
// context: the pool's own context only governs pool shutdown.
type CheckJob struct {
	Seq     int
	Ctx     context.Context
	Record  model.CheckRecord
	Checker Checker
}

// Index returns the job's position in the batch
func (j *CheckJob) Index() int {
	return j.Seq
}

// Execute executes the check job
func (j *CheckJob) Execute(context.Context) Result {
	report, err := j.Checker.CheckRecord(j.Ctx, j.Record)
	if err != nil {
		return &CheckJobResult{
			Seq:    j.Seq,
			Record: j.Record,
			Error:  err,
		}
	}
	return &CheckJobResult{
		Seq:    j.Seq,
		Record: j.Record,
		Report: report,
	}
}

// CheckJobResult represents the result of a check job
type CheckJobResult struct {
	Seq    int
	Record model.CheckRecord
	Report *model.CheckReport
	Error  error
}

// Index returns the result's position in the batch
func (r *CheckJobResult) Index() int {
	return r.Seq
}

// GetError returns the error from the check result
func (r *CheckJobResult) GetError() error {
	return r.Error
}

// BatchProcessor fact-checks multiple records concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessRecords fact-checks multiple records concurrently. Results come
// back in record order.
func (b *BatchProcessor) ProcessRecords(ctx context.Context, records []model.CheckRecord) []*CheckJobResult {
	if len(records) == 0 {
		return []*CheckJobResult{}
	}

	// Create worker pool
	pool := NewPool(b.concurrency)
	pool.Start()

	// Submit jobs
	for i, record := range records {
		job := &CheckJob{
			Seq:     i,
			Ctx:     ctx,
			Record:  record,
			Checker: b.checker,
		}
		pool.Submit(job)
	}

	// Wait for all jobs to complete
	results := pool.Wait()

	// Convert to CheckJobResults
	checkResults := make([]*CheckJobResult, len(results))
	for i, result := range results {
		checkResults[i] = result.(*CheckJobResult)
	}

	return checkResults
}

// ProcessFile reads check records from a JSONL file and processes them
// concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CheckJobResult, error) {
	records, err := ReadRecordsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	return b.ProcessRecords(ctx, records), nil
}

// ReadRecordsFromFile reads check records from a JSONL file (one JSON object
// per line). Blank lines and # comments are skipped; records with a
// duplicate id are dropped; a line that is not a valid record is an error
// naming the line number.
func ReadRecordsFromFile(filePath string) ([]model.CheckRecord, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var records []model.CheckRecord
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	// Inline reference documents can push lines past the default token limit
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var record model.CheckRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if record.ID == "" {
			return nil, fmt.Errorf("line %d: record has no id", lineNo)
		}

		// Deduplicate records
		if !seen[record.ID] {
			seen[record.ID] = true
			records = append(records, record)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return records, nil
}
