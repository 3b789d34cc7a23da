package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/async-demos/internal/debounce"
	"github.com/CodexForgeBR/async-demos/internal/logging"
	"github.com/CodexForgeBR/async-demos/internal/persist"
	"github.com/CodexForgeBR/async-demos/internal/placeholder"
	"github.com/CodexForgeBR/async-demos/internal/retry"
)

// visitsKey is the store key of the visit counter.
const visitsKey = "visits"

type retryResult struct {
	Result    string `json:"result" yaml:"result"`
	Attempts  int    `json:"attempts" yaml:"attempts"`
	ElapsedMs int64  `json:"elapsed_ms" yaml:"elapsed_ms"`
}

func (a *app) retryCmd() *cobra.Command {
	var failTimes int

	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Run a simulated flaky operation under the retry policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Section("Retry")

			cfg := a.metrics.InstrumentRetry(a.cfg.RetryConfig())
			cfg.OnRetry = chainRetry(cfg.OnRetry, func(attempt int, delay time.Duration, err error) {
				logging.Warn(fmt.Sprintf("Attempt %d failed. Retrying in %s...", attempt, logging.FormatDuration(delay)))
			})

			attempts := 0
			start := time.Now()
			result, err := retry.Do(cmd.Context(), cfg, func(ctx context.Context) (string, error) {
				attempts++
				if attempts <= failTimes {
					return "", errors.New("failed to fetch data")
				}
				return fmt.Sprintf("Data fetched successfully on attempt %d", attempts), nil
			})
			if err != nil {
				return err
			}

			logging.Success(result)
			return a.render(retryResult{
				Result:    result,
				Attempts:  attempts,
				ElapsedMs: time.Since(start).Milliseconds(),
			})
		},
	}

	cmd.Flags().IntVar(&failTimes, "fail-times", 2, "Number of leading attempts that fail")
	return cmd
}

// chainRetry runs first then second.
func chainRetry(first, second func(int, time.Duration, error)) func(int, time.Duration, error) {
	return func(attempt int, delay time.Duration, err error) {
		if first != nil {
			first(attempt, delay, err)
		}
		second(attempt, delay, err)
	}
}

type visitsResult struct {
	Key    string `json:"key" yaml:"key"`
	Visits int    `json:"visits" yaml:"visits"`
}

func (a *app) visitsCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "visits",
		Short: "Increment the persisted visit counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			visits := persist.New(ctx, st, visitsKey, 0, persist.WithMetrics(a.metrics))
			logging.Debug(fmt.Sprintf("Loaded %s=%d", visits.Key(), visits.Get()))

			if reset {
				visits.Set(ctx, 0)
			} else {
				visits.Update(ctx, func(n int) int { return n + 1 })
			}

			return a.render(visitsResult{Key: visits.Key(), Visits: visits.Get()})
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Reset the counter to zero instead of incrementing")
	return cmd
}

func (a *app) fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "fetch <users|posts|todos|user ID>",
		Short:     "Fetch resources from the placeholder API",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"users", "posts", "todos", "user"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := a.client()

			var (
				v   any
				err error
			)
			switch args[0] {
			case "users":
				v, err = c.Users(ctx)
			case "posts":
				v, err = c.Posts(ctx)
			case "todos":
				v, err = c.Todos(ctx)
			case "user":
				if len(args) != 2 {
					return fmt.Errorf("fetch user requires an ID")
				}
				id, convErr := strconv.Atoi(args[1])
				if convErr != nil {
					return fmt.Errorf("invalid user ID %q", args[1])
				}
				v, err = c.User(ctx, id)
			default:
				return fmt.Errorf("unknown resource %q", args[0])
			}
			if err != nil {
				return fmt.Errorf("fetch %s: %w", args[0], err)
			}
			return a.render(v)
		},
	}
}

func (a *app) postCmd() *cobra.Command {
	var p placeholder.NewPost

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Create a post on the placeholder API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(p.Title) == "" {
				return fmt.Errorf("--title is required")
			}
			created, err := a.client().CreatePost(cmd.Context(), p)
			if err != nil {
				return fmt.Errorf("create post: %w", err)
			}
			logging.Success(fmt.Sprintf("Created post %d", created.ID))
			return a.render(created)
		},
	}

	cmd.Flags().StringVar(&p.Title, "title", "", "Post title")
	cmd.Flags().StringVar(&p.Body, "body", "", "Post body")
	cmd.Flags().IntVar(&p.UserID, "user-id", 1, "Author user ID")
	return cmd
}

func (a *app) batchCmd() *cobra.Command {
	var ids []int

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Fetch several users in concurrent batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ids) == 0 {
				return fmt.Errorf("--ids is required")
			}
			logging.Section(fmt.Sprintf("Batch of %d users, %d at a time", len(ids), a.cfg.BatchSize))

			start := time.Now()
			users, err := a.client().UsersByID(cmd.Context(), ids, a.cfg.BatchSize)
			if err != nil {
				return err
			}
			logging.Success(fmt.Sprintf("Fetched %d users in %s", len(users), logging.FormatDuration(time.Since(start))))
			return a.render(users)
		},
	}

	cmd.Flags().IntSliceVar(&ids, "ids", nil, "Comma-separated user IDs")
	return cmd
}

type searchResult struct {
	Query   string   `json:"query" yaml:"query"`
	Search  int      `json:"search" yaml:"search"`
	Matches []string `json:"matches" yaml:"matches"`
}

func (a *app) searchCmd() *cobra.Command {
	var delayMs int

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Debounced search over post titles, queries read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := a.client().Posts(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch posts: %w", err)
			}

			var (
				mu        sync.Mutex
				searches  int
				renderErr error
			)
			d := debounce.New(time.Duration(delayMs)*time.Millisecond, func(q string) {
				mu.Lock()
				defer mu.Unlock()
				searches++
				logging.Debug("Searching for: " + q)
				if err := a.render(searchResult{Query: q, Search: searches, Matches: matchTitles(posts, q)}); err != nil && renderErr == nil {
					renderErr = err
				}
			})
			defer d.Stop()

			scanner := bufio.NewScanner(a.in)
			for scanner.Scan() {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				d.Trigger(strings.TrimSpace(scanner.Text()))
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read queries: %w", err)
			}
			d.Flush()

			mu.Lock()
			defer mu.Unlock()
			return renderErr
		},
	}

	cmd.Flags().IntVar(&delayMs, "debounce", 500, "Quiet period in milliseconds before a query runs")
	return cmd
}

// matchTitles returns the titles containing q, case-insensitively.
func matchTitles(posts []placeholder.Post, q string) []string {
	q = strings.ToLower(q)
	matches := []string{}
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), q) {
			matches = append(matches, p.Title)
		}
	}
	return matches
}
