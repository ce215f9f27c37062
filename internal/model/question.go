package model

// AnswerChoice identifies one of the four labeled options. The empty
// string means no option has been selected yet.
type AnswerChoice string

const (
	ChoiceNone AnswerChoice = ""
	ChoiceA    AnswerChoice = "A"
	ChoiceB    AnswerChoice = "B"
	ChoiceC    AnswerChoice = "C"
	ChoiceD    AnswerChoice = "D"
)

// Choices lists the four valid choices in display order.
var Choices = [4]AnswerChoice{ChoiceA, ChoiceB, ChoiceC, ChoiceD}

// Valid reports whether the choice is one of A, B, C or D.
func (c AnswerChoice) Valid() bool {
	for _, v := range Choices {
		if c == v {
			return true
		}
	}
	return false
}

// Option is one labeled answer slot: text plus an optional image reference.
type Option struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// Question is the normalized question content used inside a session.
// The upstream API ships options as dynamic option{A..D} keys; the
// gateway flattens them into a fixed four-slot array at fetch time.
//
// RightAnswer and Explanation are parsed for completeness but carry
// `json:"-"` so they can never leak to the test-taking surface.
type Question struct {
	ID          string    `json:"_id"`
	Statement   string    `json:"questionStatement"`
	Image       string    `json:"questionImage,omitempty"`
	Options     [4]Option `json:"options"`
	RightAnswer int       `json:"-"`
	Explanation string    `json:"-"`
	Difficulty  string    `json:"difficulty,omitempty"`
	ChapterName string    `json:"chapterName,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}
