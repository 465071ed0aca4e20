package agents

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bububa/newsagent/client"
	"github.com/bububa/newsagent/components"
	"github.com/bububa/newsagent/schema"
	"github.com/bububa/newsagent/tools"
	"github.com/bububa/newsagent/tools/newsapi"
)

// stubClient is a deterministic remote service: RetrieveRun walks a scripted
// status sequence and sticks at the last entry.
type stubClient struct {
	mtx            sync.Mutex
	statuses       []components.RunStatus
	idx            int
	requiredAction *components.RequiredAction
	messages       []components.Message
	submitted      [][]components.ToolOutput
	posted         []string
	assistantReq   *client.AssistantRequest
}

var _ client.Client = (*stubClient)(nil)

func (c *stubClient) CreateAssistant(ctx context.Context, req client.AssistantRequest) (string, error) {
	c.assistantReq = &req
	return "asst_stub", nil
}

func (c *stubClient) CreateThread(ctx context.Context) (string, error) {
	return "thread_stub", nil
}

func (c *stubClient) CreateMessage(ctx context.Context, threadID string, role components.MessageRole, text string) (string, error) {
	c.mtx.Lock()
	c.posted = append(c.posted, text)
	c.mtx.Unlock()
	return "msg_stub", nil
}

func (c *stubClient) CreateRun(ctx context.Context, threadID, assistantID, instructions string) (*components.Run, error) {
	return &components.Run{ID: "run_stub", ThreadID: threadID, Status: components.RunStatusQueued}, nil
}

func (c *stubClient) RetrieveRun(ctx context.Context, threadID, runID string) (*components.Run, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	status := c.statuses[c.idx]
	if c.idx < len(c.statuses)-1 {
		c.idx++
	}
	run := &components.Run{ID: runID, ThreadID: threadID, Status: status}
	if status == components.RunStatusRequiresAction {
		run.RequiredAction = c.requiredAction
	}
	return run, nil
}

func (c *stubClient) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []components.ToolOutput) (*components.Run, error) {
	c.mtx.Lock()
	c.submitted = append(c.submitted, outputs)
	c.mtx.Unlock()
	return &components.Run{ID: runID, ThreadID: threadID, Status: components.RunStatusQueued}, nil
}

func (c *stubClient) ListMessages(ctx context.Context, threadID string) ([]components.Message, error) {
	return c.messages, nil
}

type stubNews struct {
	tools.Config
	articles []newsapi.Article
}

func newStubNews(articles ...newsapi.Article) *stubNews {
	ret := &stubNews{articles: articles}
	ret.SetTitle("get_news")
	ret.SetDescription("Get news articles from the internet")
	return ret
}

func (t *stubNews) Run(ctx context.Context, input *newsapi.Input, output *newsapi.Output) error {
	output.Articles = t.articles
	return nil
}

func newTestSummarizer(t *testing.T, clt client.Client, reg *tools.Registry) *Summarizer {
	t.Helper()
	sum, err := New(
		WithClient(clt),
		WithRegistry(reg),
		WithName("News Summarizer"),
		WithModel("gpt-4o-mini"),
		WithPollInterval(time.Millisecond),
		WithTimeout(time.Second),
	)
	if err != nil {
		t.Fatalf("Error creating summarizer: %v", err)
	}
	return sum
}

func assistantMessage(text string) components.Message {
	return *components.NewMessage(components.AssistantRole, schema.String(text))
}

func TestSummarizeToolCallRoundTrip(t *testing.T) {
	stub := &stubClient{
		statuses: []components.RunStatus{
			components.RunStatusQueued,
			components.RunStatusRequiresAction,
			components.RunStatusCompleted,
		},
		requiredAction: &components.RequiredAction{
			ToolCalls: []components.ToolCall{
				{ID: "call_1", Name: "get_news", Arguments: `{"topic":"bitcoin"}`},
			},
		},
		messages: []components.Message{assistantMessage("Summary: bitcoin is up.")},
	}
	reg := tools.NewRegistry()
	article := newsapi.Article{Source: "Reuters", Title: "Bitcoin climbs", URL: "https://example.com/btc"}
	if err := tools.Register[newsapi.Input, newsapi.Output](reg, newStubNews(article)); err != nil {
		t.Fatalf("Error registering tool: %v", err)
	}
	sum := newTestSummarizer(t, stub, reg)
	summary, ok, err := sum.Summarize(context.Background(), "bitcoin", "")
	if err != nil {
		t.Fatalf("Error summarizing: %v", err)
	}
	if !ok {
		t.Fatal("Expect an answer")
	}
	if summary != "Summary: bitcoin is up." {
		t.Errorf("Expect summary text, but got %q", summary)
	}
	if len(stub.submitted) != 1 {
		t.Fatalf("Expect 1 tool output submission, but got %d", len(stub.submitted))
	}
	if got := stub.submitted[0][0].ToolCallID; got != "call_1" {
		t.Errorf("Expect output keyed to call_1, but got %s", got)
	}
	if len(stub.posted) != 1 || !strings.Contains(stub.posted[0], "bitcoin") {
		t.Errorf("Expect user message about bitcoin, but got %v", stub.posted)
	}
	if stub.assistantReq == nil || len(stub.assistantReq.Tools) != 1 {
		t.Error("Expect assistant created with the registered tool schema")
	}
}

func TestSummarizeOutputSetMatchesCallSet(t *testing.T) {
	stub := &stubClient{
		statuses: []components.RunStatus{
			components.RunStatusRequiresAction,
			components.RunStatusCompleted,
		},
		requiredAction: &components.RequiredAction{
			ToolCalls: []components.ToolCall{
				{ID: "call_1", Name: "get_news", Arguments: `{"topic":"bitcoin"}`},
				{ID: "call_2", Name: "get_news", Arguments: `{"topic":"ethereum"}`},
			},
		},
		messages: []components.Message{assistantMessage("Summary.")},
	}
	reg := tools.NewRegistry()
	if err := tools.Register[newsapi.Input, newsapi.Output](reg, newStubNews()); err != nil {
		t.Fatalf("Error registering tool: %v", err)
	}
	sum := newTestSummarizer(t, stub, reg)
	if _, _, err := sum.Summarize(context.Background(), "crypto", ""); err != nil {
		t.Fatalf("Error summarizing: %v", err)
	}
	if len(stub.submitted) != 1 {
		t.Fatalf("Expect a single submission, but got %d", len(stub.submitted))
	}
	want := map[string]bool{"call_1": true, "call_2": true}
	got := make(map[string]bool, len(stub.submitted[0]))
	for _, out := range stub.submitted[0] {
		got[out.ToolCallID] = true
	}
	if len(got) != len(want) {
		t.Fatalf("Expect %d outputs, but got %d", len(want), len(got))
	}
	for id := range want {
		if !got[id] {
			t.Errorf("Expect output for %s", id)
		}
	}
}

func TestSummarizeTimeout(t *testing.T) {
	stub := &stubClient{
		statuses: []components.RunStatus{components.RunStatusInProgress},
	}
	sum, err := New(
		WithClient(stub),
		WithPollInterval(10*time.Millisecond),
		WithTimeout(30*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("Error creating summarizer: %v", err)
	}
	start := time.Now()
	_, _, err = sum.Summarize(context.Background(), "bitcoin", "")
	elapsed := time.Since(start)
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Expect TimeoutError, but got %v", err)
	}
	// terminates within budget + one interval
	if elapsed > 200*time.Millisecond {
		t.Errorf("Expect prompt timeout, but took %s", elapsed)
	}
}

func TestSummarizeRunFailed(t *testing.T) {
	stub := &stubClient{
		statuses: []components.RunStatus{components.RunStatusFailed},
	}
	sum := newTestSummarizer(t, stub, tools.NewRegistry())
	_, _, err := sum.Summarize(context.Background(), "bitcoin", "")
	var failedErr *RunFailedError
	if !errors.As(err, &failedErr) {
		t.Fatalf("Expect RunFailedError, but got %v", err)
	}
	if failedErr.Status != components.RunStatusFailed {
		t.Errorf("Expect status failed, but got %s", failedErr.Status)
	}
}

func TestSummarizeUnknownToolAbortsBeforeSubmission(t *testing.T) {
	stub := &stubClient{
		statuses: []components.RunStatus{components.RunStatusRequiresAction},
		requiredAction: &components.RequiredAction{
			ToolCalls: []components.ToolCall{
				{ID: "call_1", Name: "get_weather", Arguments: `{}`},
			},
		},
	}
	sum := newTestSummarizer(t, stub, tools.NewRegistry())
	_, _, err := sum.Summarize(context.Background(), "bitcoin", "")
	var unknownErr *tools.UnknownToolError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("Expect UnknownToolError, but got %v", err)
	}
	if len(stub.submitted) != 0 {
		t.Errorf("Expect no submission after dispatch failure, but got %d", len(stub.submitted))
	}
}

func TestSummarizeNoAssistantAnswer(t *testing.T) {
	stub := &stubClient{
		statuses: []components.RunStatus{components.RunStatusCompleted},
		messages: []components.Message{
			*components.NewMessage(components.UserRole, schema.String("summarize the news on this topic bitcoin")),
		},
	}
	sum := newTestSummarizer(t, stub, tools.NewRegistry())
	summary, ok, err := sum.Summarize(context.Background(), "bitcoin", "")
	if err != nil {
		t.Fatalf("Expect no error, but got %v", err)
	}
	if ok {
		t.Error("Expect no answer when the newest message is not from the assistant")
	}
	if summary != "" {
		t.Errorf("Expect empty summary, but got %q", summary)
	}
}

func TestSummarizeEmptyMessageList(t *testing.T) {
	stub := &stubClient{
		statuses: []components.RunStatus{components.RunStatusCompleted},
	}
	sum := newTestSummarizer(t, stub, tools.NewRegistry())
	_, ok, err := sum.Summarize(context.Background(), "bitcoin", "")
	if err != nil {
		t.Fatalf("Expect no error, but got %v", err)
	}
	if ok {
		t.Error("Expect no answer for an empty thread")
	}
}

// A degraded search provider yields an empty tool output; the run still
// submits it and completes instead of aborting.
func TestSummarizeMaskedSearchFailureStillSubmits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // unreachable endpoint
	tool, err := newsapi.New(newsapi.WithAPIKey("test-key"), newsapi.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("Error creating tool: %v", err)
	}
	reg := tools.NewRegistry()
	if err := tools.Register[newsapi.Input, newsapi.Output](reg, tool); err != nil {
		t.Fatalf("Error registering tool: %v", err)
	}
	stub := &stubClient{
		statuses: []components.RunStatus{
			components.RunStatusRequiresAction,
			components.RunStatusCompleted,
		},
		requiredAction: &components.RequiredAction{
			ToolCalls: []components.ToolCall{
				{ID: "call_1", Name: "get_news", Arguments: `{"topic":"bitcoin"}`},
			},
		},
		messages: []components.Message{assistantMessage("No recent news found.")},
	}
	sum := newTestSummarizer(t, stub, reg)
	summary, ok, err := sum.Summarize(context.Background(), "bitcoin", "")
	if err != nil {
		t.Fatalf("Expect masked provider failure, but got %v", err)
	}
	if !ok || summary == "" {
		t.Error("Expect the run to complete with an answer")
	}
	if len(stub.submitted) != 1 {
		t.Fatalf("Expect the empty output to be submitted, but got %d submissions", len(stub.submitted))
	}
	if got := stub.submitted[0][0].ToolCallID; got != "call_1" {
		t.Errorf("Expect output keyed to call_1, but got %s", got)
	}
}

// blockingClient parks the first RetrieveRun on a channel so a run can be
// held in flight while a second caller is exercised.
type blockingClient struct {
	stubClient
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (c *blockingClient) RetrieveRun(ctx context.Context, threadID, runID string) (*components.Run, error) {
	c.once.Do(func() { close(c.entered) })
	<-c.release
	return c.stubClient.RetrieveRun(ctx, threadID, runID)
}

func TestSummarizeConcurrentCallReturnsErrBusy(t *testing.T) {
	stub := &blockingClient{
		stubClient: stubClient{
			statuses: []components.RunStatus{components.RunStatusCompleted},
			messages: []components.Message{assistantMessage("Summary.")},
		},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	sum := newTestSummarizer(t, stub, tools.NewRegistry())
	firstDone := make(chan error, 1)
	go func() {
		_, _, err := sum.Summarize(context.Background(), "bitcoin", "")
		firstDone <- err
	}()
	<-stub.entered // first run is now held in flight
	_, _, err := sum.Summarize(context.Background(), "ethereum", "")
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("Expect ErrBusy for the concurrent call, but got %v", err)
	}
	close(stub.release)
	if err := <-firstDone; err != nil {
		t.Fatalf("Expect the first run to complete, but got %v", err)
	}
	// the guard clears once the first run finishes
	if _, _, err := sum.Summarize(context.Background(), "bitcoin", ""); err != nil {
		t.Errorf("Expect a later run to proceed, but got %v", err)
	}
}

func TestSummarizeEmptyRequiredActionBatch(t *testing.T) {
	stub := &stubClient{
		statuses:       []components.RunStatus{components.RunStatusRequiresAction},
		requiredAction: &components.RequiredAction{},
	}
	sum := newTestSummarizer(t, stub, tools.NewRegistry())
	_, _, err := sum.Summarize(context.Background(), "bitcoin", "")
	if !errors.Is(err, ErrNoToolCalls) {
		t.Fatalf("Expect ErrNoToolCalls, but got %v", err)
	}
	if len(stub.submitted) != 0 {
		t.Errorf("Expect no submission for an empty batch, but got %d", len(stub.submitted))
	}
}

func TestStartConversationIdempotent(t *testing.T) {
	stub := &stubClient{statuses: []components.RunStatus{components.RunStatusCompleted}}
	sum := newTestSummarizer(t, stub, tools.NewRegistry())
	first, err := sum.StartConversation(context.Background())
	if err != nil {
		t.Fatalf("Error starting conversation: %v", err)
	}
	second, err := sum.StartConversation(context.Background())
	if err != nil {
		t.Fatalf("Error starting conversation again: %v", err)
	}
	if first != second {
		t.Errorf("Expect the same thread id, but got %s and %s", first, second)
	}
}

func TestStartRunRequiresInitialization(t *testing.T) {
	stub := &stubClient{statuses: []components.RunStatus{components.RunStatusCompleted}}
	sum := newTestSummarizer(t, stub, tools.NewRegistry())
	if err := sum.startRun(context.Background(), ""); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expect ErrNotInitialized, but got %v", err)
	}
}

func TestCustomInstructionsOverrideDefault(t *testing.T) {
	recorded := ""
	stub := &runInstructionRecorder{
		stubClient: stubClient{
			statuses: []components.RunStatus{components.RunStatusCompleted},
			messages: []components.Message{assistantMessage("Summary.")},
		},
		record: func(instructions string) { recorded = instructions },
	}
	sum, err := New(
		WithClient(stub),
		WithRunInstructions("default run instructions"),
		WithPollInterval(time.Millisecond),
		WithTimeout(time.Second),
	)
	if err != nil {
		t.Fatalf("Error creating summarizer: %v", err)
	}
	if _, _, err := sum.Summarize(context.Background(), "bitcoin", "Summarize the last 3 days of news about bitcoin"); err != nil {
		t.Fatalf("Error summarizing: %v", err)
	}
	if recorded != "Summarize the last 3 days of news about bitcoin" {
		t.Errorf("Expect custom instructions to win, but got %q", recorded)
	}
}

type runInstructionRecorder struct {
	stubClient
	record func(string)
}

func (c *runInstructionRecorder) CreateRun(ctx context.Context, threadID, assistantID, instructions string) (*components.Run, error) {
	c.record(instructions)
	return c.stubClient.CreateRun(ctx, threadID, assistantID, instructions)
}
