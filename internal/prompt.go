package internal

import (
	"fmt"
	"strings"
)

const answerSystemPrompt = "You are an expert customer support agent. " +
	"Provide a clear, concise, and friendly answer to the user's query based only on the provided context from the knowledge base. " +
	"Do not invent new information. If the context does not contain the answer, " +
	"state that you couldn't find the information and suggest they rephrase the question. " +
	"Format your answer for readability."

// BuildAnswerPrompt assembles the synthesis prompt: the strict grounding
// instructions, the user's question and the retrieved query/solution pairs.
func BuildAnswerPrompt(question string, results []SearchResult) string {
	var sb strings.Builder
	sb.WriteString(answerSystemPrompt)
	sb.WriteString("\n\nUser Query: ")
	sb.WriteString(fmt.Sprintf("%q", question))
	sb.WriteString("\n\nContext from knowledge base:\n")
	sb.WriteString(FormatContext(results))
	return sb.String()
}

// FormatContext renders retrieved query/solution pairs as plain text. The
// same rendering goes into the synthesis prompt and the feedback log.
func FormatContext(results []SearchResult) string {
	var sb strings.Builder
	for i, res := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Query: ")
		sb.WriteString(res.Query)
		sb.WriteString("\nSolution: ")
		sb.WriteString(res.Solution)
		sb.WriteString("\n")
	}
	return sb.String()
}

// BuildGapDigestPrompt asks the provider for a structured digest of open
// knowledge gaps so a human reviewer knows where the corpus is thin.
func BuildGapDigestPrompt(gaps []Gap) string {
	var sb strings.Builder
	sb.WriteString("The following customer queries could not be answered from the support knowledge base. ")
	sb.WriteString("Summarize the recurring themes and suggest knowledge-base articles that would close these gaps.\n\n")
	for _, gap := range gaps {
		sb.WriteString("- ")
		sb.WriteString(gap.Query)
		sb.WriteString("\n")
	}
	return sb.String()
}
