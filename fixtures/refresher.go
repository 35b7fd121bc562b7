package fixtures

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/fixture-refresh/internal/fetch"
)

// RefreshOptions configures a Refresher
type RefreshOptions struct {
	APIKey  string        // optional key injected into every URL
	Indent  int           // fixture block indentation (default 16)
	Timeout time.Duration // per-request timeout
	RPS     float64       // request rate cap
	DryRun  bool          // report changes without writing
	Backup  bool          // write <path>.bak with the original bytes before overwriting
}

// Refresher rewrites fixture files with freshly fetched response bodies.
// Blocks are processed strictly in file order, one fetch at a time.
type Refresher struct {
	options RefreshOptions
	client  *fetch.Client
}

// NewRefresher creates a refresher with its own fetch client
func NewRefresher(opts RefreshOptions) *Refresher {
	return &Refresher{
		options: opts,
		client: fetch.NewClient(fetch.Options{
			APIKey:  opts.APIKey,
			Timeout: opts.Timeout,
			RPS:     opts.RPS,
		}),
	}
}

// RefreshFile scans path, fetches every fixture URL in order, and rewrites
// the file with the fresh bodies. The whole file is scanned and every fetch
// completed before any byte is written, so a malformed block or a non-404
// HTTP failure leaves the file untouched.
func (r *Refresher) RefreshFile(ctx context.Context, path string) (*FileResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture file: %w", err)
	}

	opts := ScanOptions{Indent: r.options.Indent}
	doc, err := Scan(bytes.NewReader(raw), path, opts)
	if err != nil {
		return nil, err
	}

	indent := bytes.Repeat([]byte(" "), opts.indentWidth())
	result := &FileResult{Path: path}
	for _, block := range doc.Blocks() {
		resp, err := r.client.Fetch(ctx, block.URL)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, block.Line, err)
		}

		status := StatusPreserved
		if resp.Status == fetch.StatusFetched {
			newData := string(indent) + Escape(resp.Body) + "\n"
			if newData == block.Data {
				status = StatusUnchanged
			} else {
				block.Data = newData
				status = StatusRefreshed
			}
		}
		result.Blocks = append(result.Blocks, BlockResult{
			URL:    block.URL,
			Line:   block.Line,
			Status: status,
		})
	}

	if r.options.DryRun {
		logger.Infof("dry-run: %s not modified", path)
		return result, nil
	}

	if r.options.Backup {
		if err := os.WriteFile(path+".bak", raw, 0644); err != nil {
			return nil, fmt.Errorf("failed to write backup for %s: %w", path, err)
		}
	}

	if err := os.WriteFile(path, doc.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to rewrite %s: %w", path, err)
	}
	result.Written = true
	return result, nil
}

// RefreshFiles refreshes each path in order, stopping at the first failure.
func (r *Refresher) RefreshFiles(ctx context.Context, paths []string) (*RefreshResults, error) {
	results := &RefreshResults{}
	for _, path := range paths {
		fileResult, err := r.RefreshFile(ctx, path)
		if err != nil {
			return nil, err
		}
		results.Files = append(results.Files, *fileResult)
	}
	results.Summarize()
	return results, nil
}
