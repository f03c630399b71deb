package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/mcncl/psconv/internal/config"
	"github.com/mcncl/psconv/internal/errors"
)

// Job is one file conversion.
type Job struct {
	Input  string
	Output string
	Mode   string
}

// Result reports the outcome of one Job.
type Result struct {
	Job   Job
	Bytes int
	Err   error
}

var targetExt = map[string]string{
	config.ModeJSONToPS: ".ps1",
	config.ModeYAMLToPS: ".ps1",
	config.ModePSToJSON: ".json",
	config.ModePSToYAML: ".yaml",
}

// OutputPath derives where the result of converting input in mode goes.
// The extension is replaced by the target format's; fmt keeps it. An empty
// outDir places the output next to the input.
func OutputPath(input, mode, outDir string) string {
	base := filepath.Base(input)
	if ext, ok := targetExt[mode]; ok {
		base = strings.TrimSuffix(base, filepath.Ext(base)) + ext
	}
	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	return filepath.Join(outDir, base)
}

// Jobs builds one Job per input using the configured mode and out_dir.
func (c *Converter) Jobs(inputs []string) []Job {
	jobs := make([]Job, 0, len(inputs))
	for _, in := range inputs {
		jobs = append(jobs, Job{
			Input:  in,
			Output: OutputPath(in, c.cfg.Mode, c.cfg.Batch.OutDir),
			Mode:   c.cfg.Mode,
		})
	}
	return jobs
}

// Batch converts every job on a pool of batch.workers goroutines. Results
// come back in job order. Jobs that have not started when ctx is done fail
// with the context error. The returned error summarizes failed jobs.
func (c *Converter) Batch(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}

	pool, err := ants.NewPool(c.cfg.Batch.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, job := range jobs {
		i, job := i, job
		results[i].Job = job
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			results[i].Bytes, results[i].Err = c.convertFile(job)
		})
		if submitErr != nil {
			wg.Done()
			results[i].Err = submitErr
		}
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			c.logger.Debug("batch job failed", "input", r.Job.Input, "error", r.Err)
		} else {
			c.logger.Debug("batch job done", "input", r.Job.Input, "output", r.Job.Output, "bytes", r.Bytes)
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("%d of %d files failed to convert", failed, len(jobs))
	}
	return results, nil
}

func (c *Converter) convertFile(job Job) (int, error) {
	src, err := os.ReadFile(job.Input)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errors.NewInputError(fmt.Sprintf("file '%s' not found", job.Input), errors.ErrFileNotFound)
		}
		return 0, errors.NewInputError(fmt.Sprintf("failed to open file '%s'", job.Input), err)
	}
	if len(src) == 0 {
		return 0, errors.NewInputError(fmt.Sprintf("input file '%s' is empty", job.Input), errors.ErrFileEmpty)
	}

	out, err := c.Convert(job.Mode, src)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(job.Output), 0755); err != nil {
		return 0, errors.NewOutputError(fmt.Sprintf("failed to create directory for '%s'", job.Output), err)
	}
	if err := os.WriteFile(job.Output, out, 0644); err != nil {
		return 0, errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", job.Output), err)
	}
	return len(out), nil
}
