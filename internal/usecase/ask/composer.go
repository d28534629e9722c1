package ask

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
)

// Outcome labels which composition path produced the answer.
type Outcome string

const (
	// OutcomeGenerated marks an answer produced by the generation capability.
	OutcomeGenerated Outcome = "generated"
	// OutcomeFallback marks a deterministic answer built from retrieved snippets.
	OutcomeFallback Outcome = "fallback"
	// OutcomeError marks a user-visible error answer.
	OutcomeError Outcome = "error"
)

const systemPrompt = `You are a helpful Teaching Assistant for the Tools in Data Science course at IIT Madras.

Your task is to answer student questions based on the provided course content and discourse discussions.

Guidelines:
1. Provide accurate, helpful answers based on the context provided
2. If the question involves choosing between models (like GPT versions), refer to the specific requirements mentioned in the course materials
3. Be concise but comprehensive
4. If you cannot find relevant information in the context, say so clearly
5. Focus on practical, actionable advice for students

Respond with a clear, helpful answer that addresses the student's question directly.`

const (
	contextSeparator = "\n\n---\n\n"
	noContextNotice  = "No highly relevant content found in the database."

	nothingFoundAnswer = "I couldn't find specific information about your question in the course materials. " +
		"Please try rephrasing your question or check the course resources directly."

	imageFallbackNote = "Note: I can see you've included an image, but I need AI functionality to analyze it. " +
		"Please describe what's in the image so I can help better."

	emptyCompletionAnswer = "I couldn't generate a response."
)

// ComposerConfig tunes fallback answer assembly.
type ComposerConfig struct {
	FallbackSnippetMax int
	FallbackMaxHits    int
}

// Composer turns a question and its context bundle into an answer, either
// via the generation capability or via deterministic fallback text.
type Composer struct {
	generator Generator
	cfg       ComposerConfig
	logger    *zap.Logger
}

// NewComposer creates an answer composer. generator may be nil, which
// routes every question to the fallback path.
func NewComposer(generator Generator, cfg ComposerConfig, logger *zap.Logger) *Composer {
	if cfg.FallbackMaxHits <= 0 {
		cfg.FallbackMaxHits = 3
	}
	return &Composer{generator: generator, cfg: cfg, logger: logger}
}

// Compose produces the answer text for a question. Quota-class generation
// failures switch to the fallback path; any other generation failure
// becomes a user-visible error answer.
func (c *Composer) Compose(
	ctx context.Context, question string, image []byte, bundle domain.ContextBundle,
) (string, Outcome) {
	if c.generator == nil {
		return c.fallback(bundle, image), OutcomeFallback
	}

	answer, err := c.generator.Generate(ctx, systemPrompt, c.buildUserText(question, bundle, image), image)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationQuota) {
			c.logger.Warn("Generation quota exhausted, falling back to retrieved snippets", zap.Error(err))
			return c.fallback(bundle, image), OutcomeFallback
		}
		c.logger.Error("Generation failed", zap.Error(err))
		return fmt.Sprintf("Sorry, I encountered an error while processing your question: %v", err), OutcomeError
	}

	if strings.TrimSpace(answer) == "" {
		return emptyCompletionAnswer, OutcomeGenerated
	}
	return answer, OutcomeGenerated
}

// buildUserText assembles the single prompt: question plus retrieved
// snippets joined with the separator, and an image notice when present.
func (c *Composer) buildUserText(question string, bundle domain.ContextBundle, image []byte) string {
	contextText := noContextNotice
	if len(bundle.Entries) > 0 {
		parts := make([]string, 0, len(bundle.Entries))
		for _, entry := range bundle.Entries {
			parts = append(parts, fmt.Sprintf("Title: %s\nURL: %s\nContent: %s",
				entry.Title, entry.URL, entry.Snippet))
		}
		contextText = strings.Join(parts, contextSeparator)
	}

	text := fmt.Sprintf(`Student Question: %s

Relevant Course Content and Discussions:
%s

Please provide a helpful answer to the student's question based on the above context.`, question, contextText)

	if len(image) > 0 {
		text += "\n\nNote: The student has also provided an image/screenshot. " +
			"Please analyze it in context of their question."
	}
	return text
}

// fallback builds the answer deterministically from the retrieved context:
// up to FallbackMaxHits labeled excerpts in hit-rank order.
func (c *Composer) fallback(bundle domain.ContextBundle, image []byte) string {
	if len(bundle.Entries) == 0 {
		return nothingFoundAnswer
	}

	parts := []string{"Based on the course materials I found:\n"}
	for i, entry := range bundle.Entries {
		if i >= c.cfg.FallbackMaxHits {
			break
		}
		parts = append(parts,
			fmt.Sprintf("%d. From '%s':", i+1, entry.Title),
			"   "+truncate(entry.Snippet, c.cfg.FallbackSnippetMax),
			"",
		)
	}

	if len(image) > 0 {
		parts = append(parts, imageFallbackNote)
	}
	return strings.Join(parts, "\n")
}
