package domain

import "errors"

var (
	// ErrQuestionLoad is the fatal initialization error; call Start again to recover.
	ErrQuestionLoad = errors.New("failed to load questions")
	// ErrNotEnoughQuestions is returned when the question bank is below the minimum size.
	ErrNotEnoughQuestions = errors.New("not enough questions")
	// ErrMalformedQuestion indicates a question record failed validation.
	ErrMalformedQuestion = errors.New("malformed question")
	// ErrSessionNotFound is returned when a quiz session does not exist.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionEnded is returned when a mutation is attempted after the session ended.
	ErrSessionEnded = errors.New("quiz session already ended")
	// ErrQuestionNotFound indicates a submitted question ID is not part of the session.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionOutOfRange indicates a selected option index is not valid for the question.
	ErrOptionOutOfRange = errors.New("option index out of range")
	// ErrPositionOutOfRange indicates a navigation target outside the presentation order.
	ErrPositionOutOfRange = errors.New("position out of range")
	// ErrNameRequired is returned when a session is started without a user name.
	ErrNameRequired = errors.New("user name is required")
	// ErrInvalidTheme indicates an unknown theme value.
	ErrInvalidTheme = errors.New("invalid theme")
)
