package ragbot

import (
	"strings"

	"github.com/fyrsmithlabs/policybot/internal/vectorstore"
	"github.com/tmc/langchaingo/prompts"
)

const answerTemplate = `Use the following pieces of context to answer the query at the end.
If you don't know the answer, just say that you don't know, don't try to make up an answer.

{{.context}}

Query: {{.query}}

Helpful Answer:`

var answerPrompt = prompts.NewPromptTemplate(answerTemplate, []string{"context", "query"})

func buildPrompt(question string, results []vectorstore.SearchResult) (string, error) {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Content
	}
	return answerPrompt.Format(map[string]any{
		"context": strings.Join(parts, " | "),
		"query":   question,
	})
}
