// Package backend is the HTTP client for the upstream exam-platform
// API. It owns the wire contract (tests, question batches, submission)
// and normalizes the upstream's dynamic option{A..D} shape into the
// fixed four-slot model used everywhere else.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantprep/examgate/internal/cache"
	"github.com/quantprep/examgate/internal/model"
)

var (
	// ErrTestNotFound is returned when the upstream has no test with
	// the requested id.
	ErrTestNotFound = errors.New("test not found")

	// ErrUpstream covers any other non-2xx upstream response.
	ErrUpstream = errors.New("upstream request failed")
)

// Client talks to the upstream API. All calls forward the caller's
// bearer token verbatim; the gateway never mints credentials of its
// own.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *cache.Cache // nil disables caching
	log     zerolog.Logger
}

// NewClient creates an upstream API client. cacheStore may be nil.
func NewClient(baseURL string, timeout time.Duration, cacheStore *cache.Cache, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		cache:   cacheStore,
		log:     log.With().Str("component", "backend_client").Logger(),
	}
}

// wireOptions is the upstream's dynamic-keyed option shape.
type wireOptions struct {
	OptionA      string `json:"optionA"`
	OptionAImage string `json:"optionAImage"`
	OptionB      string `json:"optionB"`
	OptionBImage string `json:"optionBImage"`
	OptionC      string `json:"optionC"`
	OptionCImage string `json:"optionCImage"`
	OptionD      string `json:"optionD"`
	OptionDImage string `json:"optionDImage"`
}

// wireQuestion mirrors one element of the GET /questions response.
type wireQuestion struct {
	ID                string      `json:"_id"`
	QuestionStatement string      `json:"questionStatement"`
	QuestionImage     string      `json:"questionImage"`
	Options           wireOptions `json:"options"`
	RightAnswer       int         `json:"rightAnswer"`
	Explanation       string      `json:"explanation"`
	Difficulty        string      `json:"difficulty"`
	ChapterName       string      `json:"chapterName"`
	Tags              []string    `json:"tags"`
}

func (w *wireQuestion) toModel() model.Question {
	return model.Question{
		ID:        w.ID,
		Statement: w.QuestionStatement,
		Image:     w.QuestionImage,
		Options: [4]model.Option{
			{Text: w.Options.OptionA, Image: w.Options.OptionAImage},
			{Text: w.Options.OptionB, Image: w.Options.OptionBImage},
			{Text: w.Options.OptionC, Image: w.Options.OptionCImage},
			{Text: w.Options.OptionD, Image: w.Options.OptionDImage},
		},
		RightAnswer: w.RightAnswer,
		Explanation: w.Explanation,
		Difficulty:  w.Difficulty,
		ChapterName: w.ChapterName,
		Tags:        w.Tags,
	}
}

// FetchTest retrieves a test definition by id.
// GET /tests/{id}
func (c *Client) FetchTest(ctx context.Context, token, testID string) (*model.TestDefinition, error) {
	key := cache.TestKey(testID)

	var test model.TestDefinition
	if c.cache.GetJSON(ctx, key, &test) {
		return &test, nil
	}

	endpoint := fmt.Sprintf("%s/tests/%s", c.baseURL, url.PathEscape(testID))
	if err := c.getJSON(ctx, token, endpoint, &test); err != nil {
		return nil, fmt.Errorf("fetch test %s: %w", testID, err)
	}
	if test.ID == "" {
		test.ID = testID
	}

	c.cache.SetJSON(ctx, key, &test)
	return &test, nil
}

// FetchQuestions retrieves full content for exactly the given question
// ids in one batched call.
// GET /questions?ids=<comma-joined>
func (c *Client) FetchQuestions(ctx context.Context, token string, ids []string) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	key := cache.QuestionsKey(ids)

	var cached []model.Question
	if c.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/questions?ids=%s", c.baseURL, url.QueryEscape(strings.Join(ids, ",")))

	var wire []wireQuestion
	if err := c.getJSON(ctx, token, endpoint, &wire); err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}

	questions := make([]model.Question, len(wire))
	for i := range wire {
		questions[i] = wire[i].toModel()
	}

	c.cache.SetJSON(ctx, key, questions)
	return questions, nil
}

// SubmitTest posts the final answers upstream.
// POST /submit-test
//
// The response body is not consumed beyond the status code; the
// upstream acknowledgement shape is not part of the contract.
func (c *Client) SubmitTest(ctx context.Context, token string, answers []model.SubmittedAnswer) error {
	body, err := json.Marshal(model.SubmitTestRequest{Answers: answers})
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	endpoint := c.baseURL + "/submit-test"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setAuth(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("submit test: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("submit test: %w: status %d", ErrUpstream, resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, token, endpoint string, dst interface{}) error {
	c.log.Debug().Str("url", endpoint).Msg("Upstream GET")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	setAuth(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrTestNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// setAuth forwards the caller's Authorization header value untouched.
func setAuth(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", token)
	}
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
