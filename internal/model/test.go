package model

// TestDefinition describes a test as served by the upstream content API.
// It is immutable once fetched into a session.
type TestDefinition struct {
	ID            string   `json:"_id"`
	Name          string   `json:"name"`
	QuestionsList []string `json:"questionsList"`
	TimeMinutes   int      `json:"time"`
	Marks         int      `json:"marks"`
	Free          bool     `json:"free"`
}

// StartSessionRequest is the payload for opening a new test attempt.
type StartSessionRequest struct {
	TestID string `json:"test_id" binding:"required,min=1,max=64"`
}

// AnswerRequest is the payload for answering the current question.
type AnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required,oneof=A B C D"`
}

// ReviewRequest is the payload for marking a question for review.
type ReviewRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
}

// NavigateRequest is the payload for jumping to an explicit question index.
// Index is a pointer so that 0 survives required-field validation.
type NavigateRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}
