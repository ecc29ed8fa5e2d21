package portfolio

import (
	"strings"

	"github.com/pkoval/regassist/internal/engine"
	"github.com/pkoval/regassist/internal/retrieval"
)

const rewriteSystemPrompt = `You rewrite questions into search queries. Rewrite the user's question as a single standalone, keyword-rich query suited for semantic search over student achievement records. Keep every name, ID, and email mentioned. Respond with ONLY the rewritten query.`

func buildRewritePrompt(question string) []engine.Message {
	return []engine.Message{
		{Role: "system", Content: rewriteSystemPrompt},
		{Role: "user", Content: question},
	}
}

const answerSystemPrompt = `You are an expert University Registrar's assistant, tasked with answering questions about student records. Your tone is professional, helpful, and you are an expert at finding and presenting information clearly.

Based ONLY on the context provided below, answer the user's question.

Rules:
- If the context does not contain the answer, state that the information is not available in the provided records.
- For requests about a specific student, synthesize all their achievements into a clear, professional summary written in a natural paragraph.
- For specific questions, provide a direct and complete answer in a full sentence.`

// buildAnswerPrompt assembles the grounded-answer prompt: fixed rules, the
// concatenated surviving documents, then the original question. The
// no-world-knowledge rule is enforced by the model, not by code; this is a
// trust boundary.
func buildAnswerPrompt(question string, docs []retrieval.Document) []engine.Message {
	var sb strings.Builder
	sb.WriteString(answerSystemPrompt)
	sb.WriteString("\n\nContext:\n")
	if len(docs) == 0 {
		sb.WriteString("(no records retrieved)\n")
	}
	for _, doc := range docs {
		sb.WriteString(doc.Content)
		sb.WriteString("\n")
	}

	return []engine.Message{
		{Role: "system", Content: sb.String()},
		{Role: "user", Content: question},
	}
}
