// seedctl submits randomized inspections to a running motovald instance and
// verifies they become readable, printing a short summary.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/okhan/motoval/internal/seeder"
	"github.com/okhan/motoval/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	cmd := &cli.Command{
		Name:  "seedctl",
		Usage: "submit randomized motorcycle inspections to a motoval service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Value: "http://localhost:9080",
				Usage: "base URL of the service",
			},
			&cli.IntFlag{
				Name:  "count",
				Value: 100,
				Usage: "number of inspections to submit",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Value: 8,
				Usage: "number of concurrent submitters",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 30 * time.Second,
				Usage: "HTTP request timeout",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Value: 42,
				Usage: "random seed for reproducible payloads",
			},
			&cli.IntFlag{
				Name:  "min-year",
				Value: 2005,
				Usage: "earliest vehicle year to generate",
			},
			&cli.IntFlag{
				Name:  "max-year",
				Value: 2026,
				Usage: "latest vehicle year to generate",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	opts := seeder.Options{
		BaseURL:     cmd.String("url"),
		Count:       cmd.Int("count"),
		Concurrency: cmd.Int("concurrency"),
		Timeout:     cmd.Duration("timeout"),
		Seed:        cmd.Int64("seed"),
		MinYear:     cmd.Int("min-year"),
		MaxYear:     cmd.Int("max-year"),
	}

	res, err := seeder.Run(ctx, opts, logger.Get().Named("seedctl"))
	if err != nil {
		return err
	}

	fmt.Printf("submitted:  %d\n", res.Submitted)
	fmt.Printf("duplicates: %d\n", res.Duplicates)
	fmt.Printf("rejected:   %d\n", res.Rejected)
	fmt.Printf("fetched:    %d\n", res.Fetched)
	fmt.Printf("elapsed:    %s\n", res.Elapsed.Round(time.Millisecond))
	return nil
}
