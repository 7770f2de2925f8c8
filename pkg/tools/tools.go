// Package tools exposes Datura search operations as MCP tools, so any MCP
// client (editors, agent frameworks) can call the hosted search API through
// a local server.
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/gjson"

	"github.com/datura-ai/datura-go/pkg/datura"
)

// SearchTools registers the Datura search operations on an MCP server and
// tracks per-tool call metrics.
type SearchTools struct {
	client       *datura.Client
	defaultModel datura.Model
	calls        *prometheus.CounterVec
}

// New creates the tool set backed by the given client. An empty defaultModel
// falls back to NOVA.
func New(client *datura.Client, defaultModel datura.Model) *SearchTools {
	if defaultModel == "" {
		defaultModel = datura.ModelNova
	}

	calls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datura_tool_calls_total",
			Help: "MCP tool calls",
		},
		[]string{"tool", "status"},
	)

	return &SearchTools{
		client:       client,
		defaultModel: defaultModel,
		calls:        calls,
	}
}

// Register adds the search tools to the server.
func (s *SearchTools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ai_search",
		Description: "AI-synthesized search across web, Reddit, Hacker News, Wikipedia, Youtube, Twitter and ArXiv",
	}, s.aiSearch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "web_search",
		Description: "Plain web search returning links and snippets",
	}, s.webSearch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "twitter_search",
		Description: "Filtered Twitter search without AI synthesis",
	}, s.twitterSearch)
}

// Collectors returns the custom Prometheus metrics for this tool set.
func (s *SearchTools) Collectors() []prometheus.Collector {
	return []prometheus.Collector{s.calls}
}

// AISearchInput are the arguments of the ai_search tool.
type AISearchInput struct {
	Prompt     string   `json:"prompt" jsonschema_description:"Natural-language search prompt"`
	Tools      []string `json:"tools,omitempty" jsonschema_description:"Search backends to aggregate, e.g. \"Web Search\", \"Reddit Search\". Defaults to web search."`
	Model      string   `json:"model,omitempty" jsonschema_description:"Synthesis model, e.g. \"NOVA\""`
	DateFilter string   `json:"date_filter,omitempty" jsonschema_description:"Time window, e.g. \"PAST_24_HOURS\""`
}

func (s *SearchTools) aiSearch(ctx context.Context, _ *mcp.CallToolRequest, input AISearchInput) (*mcp.CallToolResult, struct{}, error) {
	req := datura.AISearchRequest{
		Prompt:     input.Prompt,
		Tools:      input.Tools,
		Model:      input.Model,
		DateFilter: input.DateFilter,
	}
	if len(req.Tools) == 0 {
		req.Tools = []datura.Tool{datura.ToolWebSearch}
	}
	if req.Model == "" {
		req.Model = s.defaultModel
	}

	res, err := s.client.AISearch(ctx, req)
	if err != nil {
		return s.errorResult("ai_search", err)
	}

	s.calls.WithLabelValues("ai_search", "success").Inc()
	return textResult(summarizeAISearch(res)), struct{}{}, nil
}

// WebSearchInput are the arguments of the web_search tool.
type WebSearchInput struct {
	Query string `json:"query" jsonschema_description:"Search query"`
	Num   int    `json:"num,omitempty" jsonschema_description:"Number of results, defaults to 10"`
	Start int    `json:"start,omitempty" jsonschema_description:"Result offset for paging"`
}

func (s *SearchTools) webSearch(ctx context.Context, _ *mcp.CallToolRequest, input WebSearchInput) (*mcp.CallToolResult, struct{}, error) {
	if input.Num == 0 {
		input.Num = 10
	}

	res, err := s.client.BasicWebSearch(ctx, datura.WebSearchQuery{
		Query: input.Query,
		Num:   input.Num,
		Start: input.Start,
	})
	if err != nil {
		return s.errorResult("web_search", err)
	}

	s.calls.WithLabelValues("web_search", "success").Inc()
	return textResult(formatWebResults(input.Query, res)), struct{}{}, nil
}

// TwitterSearchInput are the arguments of the twitter_search tool.
type TwitterSearchInput struct {
	Query     string `json:"query" jsonschema_description:"Search query"`
	Sort      string `json:"sort,omitempty" jsonschema_description:"Sort order, e.g. \"Top\" or \"Latest\""`
	User      string `json:"user,omitempty" jsonschema_description:"Restrict to a username"`
	StartDate string `json:"start_date,omitempty" jsonschema_description:"Earliest date, YYYY-MM-DD"`
	EndDate   string `json:"end_date,omitempty" jsonschema_description:"Latest date, YYYY-MM-DD"`
	Lang      string `json:"lang,omitempty" jsonschema_description:"Language code, e.g. \"en\""`
}

func (s *SearchTools) twitterSearch(ctx context.Context, _ *mcp.CallToolRequest, input TwitterSearchInput) (*mcp.CallToolResult, struct{}, error) {
	res, err := s.client.BasicTwitterSearch(ctx, datura.TwitterSearchQuery{
		Query:     input.Query,
		Sort:      input.Sort,
		User:      input.User,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Lang:      input.Lang,
	})
	if err != nil {
		return s.errorResult("twitter_search", err)
	}

	s.calls.WithLabelValues("twitter_search", "success").Inc()
	return textResult(res.String()), struct{}{}, nil
}

// errorResult records a failed call and reports the error to the MCP client
// as a tool error rather than a protocol failure.
func (s *SearchTools) errorResult(tool string, err error) (*mcp.CallToolResult, struct{}, error) {
	s.calls.WithLabelValues(tool, "error").Inc()
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("%s failed: %v", tool, err)},
		},
	}, struct{}{}, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// summarizeAISearch pulls the synthesized completion out of the opaque
// payload, falling back to the raw JSON when the shape is unfamiliar.
func summarizeAISearch(res *datura.Result) string {
	if summary := res.Get("completion.summary"); summary.Exists() {
		return summary.String()
	}
	if completion := res.Get("completion"); completion.Exists() && completion.Type == gjson.String {
		return completion.String()
	}
	return res.String()
}

// formatWebResults builds a human-readable block from the link results,
// falling back to the raw JSON when the shape is unfamiliar.
func formatWebResults(query string, res *datura.Result) string {
	items := res.Get("data")
	if !items.Exists() || !items.IsArray() {
		return res.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q:\n", query)

	i := 0
	for _, item := range items.Array() {
		i++
		fmt.Fprintf(&b, "\n%d. %s\n   URL: %s\n   %s\n",
			i,
			item.Get("title").String(),
			item.Get("link").String(),
			item.Get("snippet").String(),
		)
	}

	if i == 0 {
		return fmt.Sprintf("No results found for %q.", query)
	}

	return b.String()
}
