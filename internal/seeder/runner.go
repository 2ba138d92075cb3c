package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okhan/motoval/pkg/logger"
)

// Options configure a seeding run.
type Options struct {
	BaseURL     string
	Count       int
	Concurrency int
	Timeout     time.Duration
	Seed        int64
	MinYear     int
	MaxYear     int
}

// Result summarizes a seeding run.
type Result struct {
	Submitted  int
	Duplicates int
	Rejected   int
	Fetched    int
	Elapsed    time.Duration
}

type ack struct {
	Status    string `json:"status"`
	ReportID  string `json:"report_id"`
	Duplicate bool   `json:"duplicate"`
}

// Run generates opts.Count submissions, POSTs them with opts.Concurrency
// workers, then fetches each record back until the pipeline has drained.
func Run(ctx context.Context, opts Options, log logger.Logger) (Result, error) {
	if opts.Count < 1 {
		return Result{}, fmt.Errorf("count must be positive")
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	client := &http.Client{Timeout: opts.Timeout}
	gen := NewGenerator(opts.Seed, opts.MinYear, opts.MaxYear)

	subs := make([]Submission, opts.Count)
	for i := range subs {
		subs[i] = gen.Next()
	}

	start := time.Now()
	var submitted, duplicates, rejected atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for _, sub := range subs {
		g.Go(func() error {
			a, status, err := postSubmission(gctx, client, opts.BaseURL, sub)
			if err != nil {
				return err
			}
			switch {
			case status == http.StatusAccepted:
				submitted.Add(1)
			case a.Duplicate:
				duplicates.Add(1)
			default:
				rejected.Add(1)
				log.Warn(gctx, "submission rejected",
					logger.String("reportID", sub.ReportID),
					logger.Int("status", status),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("submit phase failed: %w", err)
	}

	fetched, err := verify(ctx, client, opts.BaseURL, subs, log)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Submitted:  int(submitted.Load()),
		Duplicates: int(duplicates.Load()),
		Rejected:   int(rejected.Load()),
		Fetched:    fetched,
		Elapsed:    time.Since(start),
	}, nil
}

func postSubmission(ctx context.Context, client *http.Client, baseURL string, sub Submission) (ack, int, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return ack{}, 0, fmt.Errorf("marshal submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/inspections", bytes.NewReader(body))
	if err != nil {
		return ack{}, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return ack{}, 0, fmt.Errorf("post submission: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var a ack
	_ = json.NewDecoder(resp.Body).Decode(&a)
	return a, resp.StatusCode, nil
}

// verify polls the read side until every submitted report is visible or the
// retry budget runs out. The pipeline is async, so a short drain wait is
// expected.
func verify(ctx context.Context, client *http.Client, baseURL string, subs []Submission, log logger.Logger) (int, error) {
	const (
		maxAttempts = 20
		retryDelay  = 250 * time.Millisecond
	)

	fetched := 0
	for _, sub := range subs {
		ok := false
		for attempt := 0; attempt < maxAttempts; attempt++ {
			found, err := getInspection(ctx, client, baseURL, sub.ReportID)
			if err != nil {
				return fetched, err
			}
			if found {
				ok = true
				break
			}
			select {
			case <-ctx.Done():
				return fetched, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
		if ok {
			fetched++
		} else {
			log.Warn(ctx, "inspection never became visible",
				logger.String("reportID", sub.ReportID),
			)
		}
	}
	return fetched, nil
}

func getInspection(ctx context.Context, client *http.Client, baseURL, reportID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/inspections/"+reportID, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("get inspection: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, reportID)
	}
}
