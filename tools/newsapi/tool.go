package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bububa/newsagent/schema"
	"github.com/bububa/newsagent/tools"
)

const (
	defaultBaseURL  = "https://newsapi.org/v2/everything"
	defaultPageSize = 5
	// defaultWindow is how far back the search reaches when no start date is given.
	defaultWindow = 7 * 24 * time.Hour

	dateLayout = "2006-01-02"
)

// ErrMissingAPIKey reports a tool constructed without a NewsAPI credential.
var ErrMissingAPIKey = errors.New("newsapi: missing api key")

// Input requests news articles about a topic, optionally bounded by a start
// date. When the start date is absent the search covers the last seven days.
type Input struct {
	schema.Base
	// Topic the topic for the news such as bitcoin
	Topic string `json:"topic" jsonschema:"title=topic,description=The topic for the news such as bitcoin" validate:"required"`
	// StartDate the start date for the news filtering (YYYY-MM-DD)
	StartDate string `json:"start_date,omitempty" jsonschema:"title=start_date,description=The start date for the news filtering in YYYY-MM-DD format" validate:"omitempty,datetime=2006-01-02"`
}

func NewInput(topic string, startDate string) *Input {
	return &Input{
		Topic:     topic,
		StartDate: startDate,
	}
}

func (s Input) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// Article is one formatted article summary.
type Article struct {
	schema.Base
	// ID deterministic identifier derived from the article URL
	ID string `json:"id,omitempty" jsonschema:"title=id,description=Deterministic identifier derived from the article URL"`
	// Source the publisher of the article
	Source string `json:"source" jsonschema:"title=source,description=The publisher of the article"`
	// Title the article headline
	Title string `json:"title" jsonschema:"title=title,description=The article headline"`
	// Description a short description of the article
	Description string `json:"description" jsonschema:"title=description,description=A short description of the article"`
	// URL link to the article
	URL string `json:"url" jsonschema:"title=url,description=Link to the article"`
	// Content the leading article content
	Content string `json:"content" jsonschema:"title=content,description=The leading article content"`
	// PublishedAt publication timestamp as reported by the provider
	PublishedAt string `json:"published_at" jsonschema:"title=published_at,description=Publication timestamp as reported by the provider"`
}

// Format renders the article as the text block handed to the model.
func (a Article) Format() string {
	return fmt.Sprintf("Source: %s,\nTitle: %s,\nDescription: %s,\nURL: %s,\nContent: %s,\nPublished At: %s\n",
		a.Source, a.Title, a.Description, a.URL, a.Content, a.PublishedAt)
}

// Output is a ranked list of formatted article summaries.
type Output struct {
	schema.Base
	// Articles list of article summaries sorted by popularity
	Articles []Article `json:"articles,omitempty" jsonschema:"title=articles,description=List of article summaries sorted by popularity"`
}

// String joins the formatted article blocks, which is the form submitted back
// to the remote run.
func (s Output) String() string {
	blocks := make([]string, 0, len(s.Articles))
	for _, a := range s.Articles {
		blocks = append(blocks, a.Format())
	}
	return strings.Join(blocks, "")
}

// Config holds the NewsAPI tool settings.
type Config struct {
	tools.Config
	apiKey     string
	baseURL    string
	pageSize   int
	httpClient *http.Client
	clock      func() time.Time
}

// Tool fetches and formats news articles from the NewsAPI "everything"
// endpoint, ranked by popularity. Provider failures are masked into an empty
// result rather than propagated: a degraded search must not abort the run
// that requested it.
type Tool struct {
	Config
}

var _ tools.Tool[Input, Output] = (*Tool)(nil)

// New returns a NewsAPI search tool. The API key is required and checked
// before any network activity.
func New(opts ...Option) (*Tool, error) {
	ret := new(Tool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if ret.Title() == "" {
		ret.SetTitle("get_news")
	}
	if ret.Description() == "" {
		ret.SetDescription("Get news articles from the internet")
	}
	if ret.baseURL == "" {
		ret.baseURL = defaultBaseURL
	}
	if ret.pageSize <= 0 {
		ret.pageSize = defaultPageSize
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	if ret.clock == nil {
		ret.clock = time.Now
	}
	return ret, nil
}

// Run executes the search. A transport failure or non-200 response is logged
// and yields an empty article list with a nil error.
func (t *Tool) Run(ctx context.Context, input *Input, output *Output) error {
	startDate := input.StartDate
	if startDate == "" {
		startDate = t.clock().Add(-defaultWindow).Format(dateLayout)
	}
	articles, err := t.fetchArticles(ctx, input.Topic, startDate)
	if err != nil {
		log.Printf("newsapi: request failed: %v", err)
		output.Articles = nil
		return nil
	}
	output.Articles = articles
	return nil
}

// fetchArticles queries the provider and returns the parsed article list.
func (t *Tool) fetchArticles(ctx context.Context, topic string, startDate string) ([]Article, error) {
	values := url.Values{}
	values.Set("q", topic)
	values.Set("from", startDate)
	values.Set("sortBy", "popularity")
	values.Set("pageSize", strconv.Itoa(t.pageSize))
	values.Set("apiKey", t.apiKey)
	reqURL := fmt.Sprintf("%s?%s", t.baseURL, values.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from news provider: %d", httpResp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	articles := make([]Article, 0, len(payload.Articles))
	for _, raw := range payload.Articles {
		articles = append(articles, raw.toArticle())
	}
	return articles, nil
}

type apiResponse struct {
	Status   string       `json:"status"`
	Articles []apiArticle `json:"articles"`
}

type apiArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	PublishedAt string `json:"publishedAt"`
}

// toArticle fills provider gaps with placeholder text so the formatted block
// always carries every field.
func (a apiArticle) toArticle() Article {
	ret := Article{
		Source:      orElse(a.Source.Name, "Unknown"),
		Title:       orElse(a.Title, "No title"),
		Description: orElse(a.Description, "No description"),
		URL:         orElse(a.URL, "No URL"),
		Content:     orElse(a.Content, "No content"),
		PublishedAt: orElse(a.PublishedAt, "Unknown date"),
	}
	if a.URL != "" {
		ret.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(a.URL)).String()
	}
	return ret
}

func orElse(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
