package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantprep/examgate/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, nil, zerolog.Nop()), srv
}

func TestFetchTest(t *testing.T) {
	var gotAuth, gotPath string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]interface{}{
			"name":          "FRM Part I Mock",
			"questionsList": []string{"a1", "a2", "a3"},
			"time":          90,
			"marks":         120,
			"free":          false,
		})
	}))

	test, err := client.FetchTest(context.Background(), "Bearer tok-123", "t-9")
	require.NoError(t, err)

	assert.Equal(t, "/tests/t-9", gotPath)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "t-9", test.ID) // filled in when upstream omits _id
	assert.Equal(t, "FRM Part I Mock", test.Name)
	assert.Equal(t, []string{"a1", "a2", "a3"}, test.QuestionsList)
	assert.Equal(t, 90, test.TimeMinutes)
	assert.Equal(t, 120, test.Marks)
	assert.False(t, test.Free)
}

func TestFetchTestNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.FetchTest(context.Background(), "", "nope")
	assert.ErrorIs(t, err, ErrTestNotFound)
}

func TestFetchQuestionsBatch(t *testing.T) {
	var gotIDs string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIDs = r.URL.Query().Get("ids")
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{
				"_id":               "a1",
				"questionStatement": "What is VaR?",
				"options": map[string]string{
					"optionA":      "A risk measure",
					"optionB":      "A return measure",
					"optionBImage": "img/b.png",
					"optionC":      "A ratio",
					"optionD":      "None of the above",
				},
				"rightAnswer": 1,
				"explanation": "Value at Risk.",
				"difficulty":  "easy",
				"chapterName": "Market Risk",
				"tags":        []string{"var", "frm"},
			},
		})
	}))

	questions, err := client.FetchQuestions(context.Background(), "", []string{"a1", "a2", "a3"})
	require.NoError(t, err)

	assert.Equal(t, "a1,a2,a3", gotIDs, "ids must be comma-joined into one batched call")
	require.Len(t, questions, 1)

	q := questions[0]
	assert.Equal(t, "a1", q.ID)
	assert.Equal(t, "What is VaR?", q.Statement)
	assert.Equal(t, "A risk measure", q.Options[0].Text)
	assert.Equal(t, "img/b.png", q.Options[1].Image)
	assert.Equal(t, "None of the above", q.Options[3].Text)
	assert.Equal(t, 1, q.RightAnswer)
	assert.Equal(t, "Market Risk", q.ChapterName)
}

func TestFetchQuestionsEmptyIDs(t *testing.T) {
	called := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	questions, err := client.FetchQuestions(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Nil(t, questions)
	assert.False(t, called, "no upstream call for an empty id list")
}

func TestQuestionJSONOmitsAnswerKey(t *testing.T) {
	q := model.Question{
		ID:          "a1",
		Statement:   "stmt",
		RightAnswer: 2,
		Explanation: "secret",
	}

	raw, err := json.Marshal(q)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "rightAnswer")
	assert.NotContains(t, string(raw), "secret")
}

func TestSubmitTest(t *testing.T) {
	var gotBody model.SubmitTestRequest
	var gotAuth string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))

	answers := []model.SubmittedAnswer{
		{QuestionID: "a1", SelectedAnswer: model.ChoiceB, Status: model.StatusAnswered},
		{QuestionID: "a2", SelectedAnswer: model.ChoiceNone, Status: model.StatusUnanswered},
	}

	err := client.SubmitTest(context.Background(), "Bearer tok", answers)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, answers, gotBody.Answers)
}

func TestSubmitTestUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	err := client.SubmitTest(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrUpstream)
}
