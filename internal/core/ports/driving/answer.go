package driving

import (
	"context"

	"github.com/retolabs/docqa/internal/core/domain"
)

// AnswerService answers natural-language questions about a user's
// uploaded document. Answers are a single third-person sentence with
// summarizing emoji, in the language the question was asked in.
type AnswerService interface {
	// Answer retrieves relevant passages from the user's index and
	// generates an answer. Returns domain.ErrIndexNotFound (wrapped)
	// when the user has not uploaded a document.
	Answer(ctx context.Context, user domain.UserID, question string) (string, error)
}
