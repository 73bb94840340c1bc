package pipeline

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"

	"github.com/ipincome-dev/ipincome/internal/id"
	"github.com/ipincome-dev/ipincome/internal/model"
)

// ErrEmptyProject means RunProject was given no documents.
var ErrEmptyProject = errors.New("project has no statements")

// ErrTooManyStatements means the document count exceeds the project cap.
var ErrTooManyStatements = errors.New("project exceeds statement limit")

// DefaultWorkers is the project worker pool size when Options leaves it unset.
const DefaultWorkers = 4

// Options configure one project run.
type Options struct {
	Name    string
	Workers int // 0 means DefaultWorkers
}

// RunProject processes up to MaxProjectStatements documents over a bounded
// worker pool. Every document gets a link in upload order; duplicate
// payloads are skipped rather than reprocessed. Cancellation abandons
// statements without an outcome, leaving the project in processing state,
// and the context error is returned alongside the partial project.
func (p *Processor) RunProject(ctx context.Context, docs []model.Document, opts Options) (model.Project, []StatementResult, error) {
	if len(docs) == 0 {
		return model.Project{}, nil, ErrEmptyProject
	}
	if len(docs) > model.MaxProjectStatements {
		return model.Project{}, nil, fmt.Errorf("%w: %d statements, limit %d",
			ErrTooManyStatements, len(docs), model.MaxProjectStatements)
	}

	project := model.Project{
		ID:     id.NewProjectID(),
		Name:   opts.Name,
		Status: model.ProjectProcessing,
	}
	links := make([]model.StatementLink, len(docs))
	results := make([]*StatementResult, len(docs))

	seen := make(map[[sha256.Size]byte]int, len(docs))
	var jobs []int
	for i, doc := range docs {
		links[i] = model.StatementLink{UploadOrder: i + 1, SourceFilename: doc.Name}
		sum := sha256.Sum256(doc.Bytes)
		if first, dup := seen[sum]; dup {
			links[i].Status = model.LinkSkipped
			links[i].Message = fmt.Sprintf("duplicate of %s", docs[first].Name)
			continue
		}
		seen[sum] = i
		jobs = append(jobs, i)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	// Each worker writes only its own link and result slots, so no lock is
	// needed around the slices.
	jobCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobCh {
				res, err := p.ProcessStatement(ctx, docs[i])
				switch {
				case err == nil:
					links[i].StatementID = res.StatementID
					links[i].Status = model.LinkSuccess
					links[i].Warning = res.Warning
					links[i].Message = res.Message
					results[i] = &res
				case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
					// abandoned in flight: no outcome, no partial result set
				default:
					links[i].Status = model.LinkError
					links[i].Message = err.Error()
				}
			}
		}()
	}

feed:
	for _, i := range jobs {
		select {
		case jobCh <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobCh)
	wg.Wait()

	project.Links = links
	project.Status = FoldStatus(links)

	var out []StatementResult
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return project, out, ctx.Err()
}
