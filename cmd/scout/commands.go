package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/poiesic/scout"
	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/indexer"
	"github.com/poiesic/scout/report"
	"github.com/urfave/cli/v2"
)

var errQueryRequired = errors.New("query is required")

func openApp(c *cli.Context) (*scout.App, error) {
	cfg, err := configFromContext(c)
	if err != nil {
		return nil, err
	}
	app, err := scout.Open(c.Context, cfg, scout.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to open backends: %w", err)
	}
	return app, nil
}

// searchRequestFromContext reads a search request from the positional
// query and the search flags.
func searchRequestFromContext(c *cli.Context) (core.SearchRequest, error) {
	req := core.SearchRequest{
		Query:    strings.TrimSpace(strings.Join(c.Args().Slice(), " ")),
		TopK:     c.Int("top-k"),
		Industry: c.String("industry"),
	}
	if req.Query == "" {
		return req, errQueryRequired
	}
	if c.IsSet("salary-min") || c.IsSet("salary-max") {
		if !c.IsSet("salary-min") || !c.IsSet("salary-max") {
			return req, errors.New("salary-min and salary-max must be given together")
		}
		req.SalaryRange = &core.SalaryRange{Min: c.Int("salary-min"), Max: c.Int("salary-max")}
	}
	if c.IsSet("radius") {
		radius := c.Float64("radius")
		req.LocationFilter = &radius
	}
	return req, nil
}

func runSearch(c *cli.Context) (*core.SearchResponse, error) {
	req, err := searchRequestFromContext(c)
	if err != nil {
		return nil, err
	}

	app, err := openApp(c)
	if err != nil {
		return nil, err
	}
	defer app.Close()

	searcher, err := app.NewSearcher()
	if err != nil {
		return nil, err
	}
	return searcher.Search(c.Context, req)
}

func searchCommand(c *cli.Context) error {
	resp, err := runSearch(c)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, resp)
	}
	printResults(c.App.Writer, resp)
	return nil
}

func printResults(w io.Writer, resp *core.SearchResponse) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tNAME\tROLE\tCITY\tSCORE")
	for i, r := range resp.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.2f\n", i+1, r.ID, r.Name, r.Role, r.Location.City, r.MatchScore)
	}
	tw.Flush()

	for i, r := range resp.Results {
		if r.Explanation == "" {
			continue
		}
		fmt.Fprintf(w, "\n%d. %s\n%s\n", i+1, r.Name, r.Explanation)
	}
}

func exportCommand(c *cli.Context) error {
	resp, err := runSearch(c)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	path := c.String("out")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := report.WriteExcel(f, resp.Query, resp.Results); err != nil {
		f.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote %d candidates to %s\n", len(resp.Results), path)
	return nil
}

func feedbackCommand(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	feedbackType := core.FeedbackType(strings.ToLower(strings.TrimSpace(c.String("type"))))
	result, err := app.FeedbackService().Record(c.Context, c.String("candidate"), feedbackType, c.String("reason"))
	if err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "%s (tags: %s)\n", result.Message, strings.Join(result.AutoTags, ", "))
	return nil
}

func statsCommand(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	stats, err := app.FeedbackService().Stats(c.Context)
	if err != nil {
		return fmt.Errorf("failed to read feedback stats: %w", err)
	}
	if len(stats) == 0 {
		fmt.Fprintln(c.App.Writer, "No feedback recorded")
		return nil
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COUNT\tTAGS")
	for _, s := range stats {
		tags := strings.Join(s.Tags, ", ")
		if tags == "" {
			tags = "(none)"
		}
		fmt.Fprintf(tw, "%d\t%s\n", s.Count, tags)
	}
	return tw.Flush()
}

func indexCommand(c *cli.Context) error {
	candidatesPath := c.String("candidates")
	standardsPath := c.String("standards")
	if candidatesPath == "" && standardsPath == "" {
		return errors.New("at least one of --candidates or --standards is required")
	}

	config := &indexer.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Workers:        c.Int("workers"),
		VectorSize:     c.Uint64("vector-size"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	idx, err := app.NewIndexer(config, os.Stderr)
	if err != nil {
		return err
	}
	defer idx.Release()

	if candidatesPath != "" {
		docs, err := loadDocuments(candidatesPath, func(r io.Reader) ([]indexer.Document, error) {
			candidates, err := indexer.LoadCandidates(r)
			if err != nil {
				return nil, err
			}
			return indexer.CandidateDocuments(candidates)
		})
		if err != nil {
			return err
		}
		if err := idx.Run(c.Context, app.Config().CandidatesCollection, docs); err != nil {
			return fmt.Errorf("indexing candidates failed: %w", err)
		}
	}

	if standardsPath != "" {
		docs, err := loadDocuments(standardsPath, func(r io.Reader) ([]indexer.Document, error) {
			standards, err := indexer.LoadStandards(r)
			if err != nil {
				return nil, err
			}
			return indexer.StandardDocuments(standards)
		})
		if err != nil {
			return err
		}
		if err := idx.Run(c.Context, app.Config().StandardsCollection, docs); err != nil {
			return fmt.Errorf("indexing standards failed: %w", err)
		}
	}
	return nil
}

func loadDocuments(path string, load func(io.Reader) ([]indexer.Document, error)) ([]indexer.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	docs, err := load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return docs, nil
}

func healthCommand(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	checker, err := app.HealthChecker()
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, checker.Check(c.Context))
}

func serveCommand(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	server, err := app.NewServer()
	if err != nil {
		return err
	}
	fiberApp := server.App()

	addr := c.String("addr")
	errCh := make(chan error, 1)
	go func() {
		errCh <- fiberApp.Listen(addr)
	}()
	slog.Info("listening", "addr", addr)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
			slog.Error("shutdown error", "err", err)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
