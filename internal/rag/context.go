package rag

import (
	"fmt"
	"strings"
)

// BuildContext assembles the bounded prompt handed to the answer generator:
// the paper title, the question, and each retrieved excerpt labeled with its
// relevance score in rank order. Excerpts that would push the context past
// maxChars are dropped. The second return value lists the excerpts that made
// it into the prompt, so callers record only the passages the generator saw.
func BuildContext(paperTitle, query string, results []ScoredPassage, maxChars int) (string, []ScoredPassage) {
	var b strings.Builder
	fmt.Fprintf(&b, "You are answering questions about the research paper titled: %q\n", paperTitle)
	b.WriteString("User Question: " + query + "\n")
	b.WriteString("\nRelevant excerpts from the paper:\n")

	var included []ScoredPassage
	for i, r := range results {
		excerpt := fmt.Sprintf("\n--- Excerpt %d (relevance: %.3f) ---\n%s\n", i+1, r.Score, r.Passage.Content)
		if maxChars > 0 && b.Len()+len(excerpt) > maxChars {
			break
		}
		b.WriteString(excerpt)
		included = append(included, r)
	}

	b.WriteString("\nInstructions:\n")
	b.WriteString("- Answer the question based on the provided excerpts from the research paper\n")
	b.WriteString("- If the excerpts don't contain enough information to answer the question, say so\n")
	b.WriteString("- Be specific and cite relevant parts of the paper when possible\n")
	b.WriteString("- Keep your answer focused and concise")
	return b.String(), included
}
