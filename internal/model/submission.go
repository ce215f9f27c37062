package model

// AttemptStatus is the per-question label within a session. The last
// navigation/answer action always overwrites it; there is no restricted
// transition graph.
type AttemptStatus string

const (
	StatusUnanswered AttemptStatus = "unanswered"
	StatusAnswered   AttemptStatus = "answered"
	StatusReview     AttemptStatus = "review"
)

// SubmittedAnswer is one entry of the submission payload sent upstream.
type SubmittedAnswer struct {
	QuestionID     string        `json:"questionId"`
	SelectedAnswer AnswerChoice  `json:"selectedAnswer"`
	Status         AttemptStatus `json:"status"`
}

// SubmitTestRequest is the body of POST /submit-test on the upstream API.
type SubmitTestRequest struct {
	Answers []SubmittedAnswer `json:"answers"`
}
