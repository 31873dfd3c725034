package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/retolabs/docqa/internal/core/domain"
	"github.com/retolabs/docqa/internal/core/ports/driven"
	"github.com/retolabs/docqa/internal/core/ports/driving"
	"github.com/retolabs/docqa/internal/index"
	"github.com/retolabs/docqa/internal/logger"
)

// Ensure Answerer implements the driving port.
var _ driving.AnswerService = (*Answerer)(nil)

// answerPromptTemplate assembles the generation prompt. The retrieved
// passages go in verbatim; the language clause tells the model which
// language to respond in.
const answerPromptTemplate = `You are an assistant answering questions about a document.
Use only the following context to answer. If the answer is not in the
context, say the document does not mention it.

Context:
%s

Question: %s

Answer in a single sentence, in the third person, and include an emoji
that summarizes the answer. Translate your response to %s. Return only
a single sentence.`

// maxAnswerTokens bounds the completion; answers are one sentence.
const maxAnswerTokens = 256

// Answerer answers questions against a user's indexed document using
// retrieval-augmented generation.
type Answerer struct {
	registry *Registry
	embedder driven.EmbeddingService
	llm      driven.LLMService
	detector driven.LanguageDetector
	topK     int
}

// AnswererOption configures the answerer.
type AnswererOption func(*Answerer)

// WithTopK sets how many chunks are retrieved per question.
// Defaults to index.DefaultTopK.
func WithTopK(k int) AnswererOption {
	return func(a *Answerer) {
		if k > 0 {
			a.topK = k
		}
	}
}

// NewAnswerer creates an answerer wired to the given collaborators.
func NewAnswerer(registry *Registry, embedder driven.EmbeddingService, llm driven.LLMService, detector driven.LanguageDetector, opts ...AnswererOption) *Answerer {
	a := &Answerer{
		registry: registry,
		embedder: embedder,
		llm:      llm,
		detector: detector,
		topK:     index.DefaultTopK,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Answer retrieves the chunks most relevant to the question from the
// user's index and generates a single-sentence answer in the language
// the question was asked in.
func (a *Answerer) Answer(ctx context.Context, user domain.UserID, question string) (string, error) {
	if err := user.Validate(); err != nil {
		return "", err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: empty question", domain.ErrInvalidUser)
	}

	logger.Section("Answering")

	// Detection is best-effort and never fails the request.
	lang := a.detector.Detect(question)
	logger.Debug("detected language %q (known=%v)", lang.Code, lang.Known)

	a.registry.RecordQuestion(user, question)

	idx, err := a.registry.GetOrLoad(ctx, user)
	if err != nil {
		return "", fmt.Errorf("answering for user %q: %w", user, err)
	}

	query, err := a.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("%w: embedding question for user %q: %v", domain.ErrEmbeddingService, user, err)
	}

	results := idx.Search(query, a.topK)
	logger.Debug("retrieved %d chunks for user %q", len(results), user)

	prompt := buildPrompt(results, question, lang)

	answer, err := a.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens: maxAnswerTokens,
		// Temperature 0 keeps answers deterministic for a given context.
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("%w: generating answer for user %q: %v", domain.ErrGenerationService, user, err)
	}

	return strings.TrimSpace(answer), nil
}

// buildPrompt assembles the generation prompt from the retrieved
// chunks, the question, and the detected language.
func buildPrompt(results []index.Result, question string, lang domain.Language) string {
	passages := make([]string, len(results))
	for i, res := range results {
		passages[i] = res.Chunk.Content
	}
	joined := strings.Join(passages, "\n\n")

	target := "the same language as the question"
	if lang.Known {
		target = lang.Code
	}
	return fmt.Sprintf(answerPromptTemplate, joined, question, target)
}
