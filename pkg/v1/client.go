package v1

import (
	"context"
	"fmt"

	"github.com/Nidhi-o/AI-Powered-Knowledge-Engine-for-Smart-Support-and-Ticket-Resolution/internal"
)

// Client provides programmatic access to the knowledge engine.
type Client struct {
	uc        *internal.UseCases
	workspace string
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	uc := internal.NewUseCases(internal.NewWorkspaceResolver())

	return &Client{
		uc:        uc,
		workspace: cfg.workspace,
	}, nil
}

// BuildIndex embeds the configured corpus and persists the index.
func (c *Client) BuildIndex(ctx context.Context) (BuildResult, error) {
	out, err := c.uc.BuildIndex.Execute(ctx, internal.BuildIndexInput{Workspace: c.workspace})
	if err != nil {
		return BuildResult{}, fmt.Errorf("build index: %w", err)
	}
	return BuildResult{
		Count:     out.Count,
		Dimension: out.Dimension,
		Model:     out.Model,
	}, nil
}

// Search returns the k resolved tickets closest to the query.
func (c *Client) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	out, err := c.uc.Search.Execute(ctx, internal.SearchInput{
		Query: query, K: k, Workspace: c.workspace,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]SearchResult, 0, len(out.Results))
	for _, r := range out.Results {
		results = append(results, SearchResult{
			Query:    r.Query,
			Solution: r.Solution,
			Distance: r.Distance,
		})
	}
	return results, nil
}

// Ask retrieves context for the question and synthesizes an answer with the
// configured LLM provider.
func (c *Client) Ask(ctx context.Context, question string) (Answer, error) {
	out, err := c.uc.Ask.Execute(ctx, internal.AskInput{
		Question: question, Workspace: c.workspace,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}

	sources := make([]SearchResult, 0, len(out.Results))
	for _, r := range out.Results {
		sources = append(sources, SearchResult{
			Query:    r.Query,
			Solution: r.Solution,
			Distance: r.Distance,
		})
	}
	return Answer{Text: out.Answer, Sources: sources}, nil
}

// Feedback records whether an answer resolved the issue; unresolved queries
// show up as knowledge gaps in Report.
func (c *Client) Feedback(ctx context.Context, query, answer string, helpful bool) error {
	return c.uc.Feedback.Execute(ctx, internal.FeedbackInput{
		Workspace: c.workspace,
		Query:     query,
		Answer:    answer,
		Helpful:   helpful,
	})
}

// Report returns recorded feedback stats and the open knowledge gaps.
func (c *Client) Report(ctx context.Context, limit int) (Report, error) {
	out, err := c.uc.Report.Execute(ctx, internal.ReportInput{
		Workspace: c.workspace, Limit: limit,
	})
	if err != nil {
		return Report{}, fmt.Errorf("report: %w", err)
	}

	gaps := make([]Gap, 0, len(out.Gaps))
	for _, g := range out.Gaps {
		gaps = append(gaps, Gap{Query: g.Query, CreatedAt: g.CreatedAt})
	}
	return Report{
		Total:          out.Stats.Total,
		Resolved:       out.Stats.Resolved,
		Gaps:           gaps,
		ResolutionRate: out.Stats.ResolutionRate,
	}, nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}
