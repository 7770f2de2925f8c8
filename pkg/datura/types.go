package datura

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Tool identifies a search backend the AI search endpoints can draw from.
// The set of tools is defined by the service; unrecognized values are
// forwarded uninterpreted.
type Tool = string

// Known tool values.
const (
	ToolWebSearch        Tool = "Web Search"
	ToolHackerNewsSearch Tool = "Hacker News Search"
	ToolRedditSearch     Tool = "Reddit Search"
	ToolWikipediaSearch  Tool = "Wikipedia Search"
	ToolYoutubeSearch    Tool = "Youtube Search"
	ToolTwitterSearch    Tool = "Twitter Search"
	ToolArxivSearch      Tool = "ArXiv Search"
)

// Model selects the model the service uses to synthesize results.
type Model = string

// Known model values.
const (
	ModelNova Model = "NOVA"
)

// DateFilter restricts AI search results to a time window.
type DateFilter = string

// Known date filter values.
const (
	DateFilterPast24Hours DateFilter = "PAST_24_HOURS"
	DateFilterPastWeek    DateFilter = "PAST_WEEK"
	DateFilterPastMonth   DateFilter = "PAST_MONTH"
	DateFilterPastYear    DateFilter = "PAST_YEAR"
)

// AISearchRequest is the payload for the AI search endpoint.
type AISearchRequest struct {
	// Prompt is the natural-language search prompt.
	Prompt string `json:"prompt"`

	// Tools lists the search backends to aggregate. Serialized in the
	// given order. Must be non-empty.
	Tools []Tool `json:"tools"`

	// Model selects the synthesis model (e.g. ModelNova).
	Model Model `json:"model"`

	// DateFilter optionally restricts results to a time window.
	DateFilter DateFilter `json:"date_filter,omitempty"`

	// Streaming requests incremental delivery. AISearch and AISearchStream
	// override this field; it exists so the wire payload matches the
	// service contract exactly.
	Streaming bool `json:"streaming"`
}

// Validate checks the request before it is sent.
func (r AISearchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Prompt, validation.Required),
		validation.Field(&r.Tools, validation.Required),
	)
}

// WebLinksSearchRequest is the payload for the AI web links search endpoint.
type WebLinksSearchRequest struct {
	Prompt string `json:"prompt"`
	Tools  []Tool `json:"tools"`
	Model  Model  `json:"model"`
}

// Validate checks the request before it is sent.
func (r WebLinksSearchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Prompt, validation.Required),
		validation.Field(&r.Tools, validation.Required),
	)
}

// TwitterLinksSearchRequest is the payload for the AI Twitter links search
// endpoint.
type TwitterLinksSearchRequest struct {
	Prompt string `json:"prompt"`
	Model  Model  `json:"model"`
}

// Validate checks the request before it is sent.
func (r TwitterLinksSearchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Prompt, validation.Required),
	)
}

// TwitterSearchQuery is the payload for the basic Twitter search endpoint.
// Optional fields are omitted from the wire payload when unset, matching
// the service's treatment of absent filters.
type TwitterSearchQuery struct {
	Query        string `json:"query"`
	Sort         string `json:"sort,omitempty"`
	User         string `json:"user,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	Lang         string `json:"lang,omitempty"`
	Verified     *bool  `json:"verified,omitempty"`
	BlueVerified *bool  `json:"blue_verified,omitempty"`
	IsQuote      *bool  `json:"is_quote,omitempty"`
	IsVideo      *bool  `json:"is_video,omitempty"`
	IsImage      *bool  `json:"is_image,omitempty"`
	MinRetweets  *int   `json:"min_retweets,omitempty"`
	MinReplies   *int   `json:"min_replies,omitempty"`
	MinLikes     *int   `json:"min_likes,omitempty"`
}

// Validate checks the query before it is sent.
func (q TwitterSearchQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Query, validation.Required),
	)
}

// WebSearchQuery is the payload for the basic web search endpoint. Num and
// Start page through results Google-CSE style.
type WebSearchQuery struct {
	Query string `json:"query"`
	Num   int    `json:"num"`
	Start int    `json:"start"`
}

// Validate checks the query before it is sent.
func (q WebSearchQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Query, validation.Required),
		validation.Field(&q.Num, validation.Min(0)),
		validation.Field(&q.Start, validation.Min(0)),
	)
}

// Bool returns a pointer to b, for the optional boolean filters of
// TwitterSearchQuery.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to n, for the optional numeric filters of
// TwitterSearchQuery.
func Int(n int) *int { return &n }

// invalidRequest converts an ozzo validation error into the client's
// structured error type. Validation errors are keyed by struct field.
func invalidRequest(err error) *Error {
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			return NewInvalidRequestError(field, ferr.Error())
		}
	}
	return NewInvalidRequestError("", err.Error())
}
