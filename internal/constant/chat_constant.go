package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// RefusalPhrase is what the assistant must say, verbatim, when the
	// document does not contain the answer.
	RefusalPhrase = "I don't know"

	// Sentinels handed to the generator in place of retrieved context.
	NoRelevantContext      = "No relevant context found for this query."
	NoIntroductoryContent  = "No introductory content found."
	RetrievalFailedContext = "Context retrieval failed. Please try again."

	// SummaryProxyQuery replaces summarization questions so the nearest
	// neighbours are broadly representative of the document.
	SummaryProxyQuery = "summary of the document"

	// GroundedAnswerSystemPrompt takes the refusal phrase (%[1]s, used twice) and the context block (%[2]s).
	GroundedAnswerSystemPrompt = `You are a helpful AI assistant that answers questions about a single PDF document.

RULES:
1. Answer ONLY from the text between <context> and </context>. Do not use outside knowledge.
2. If the answer cannot be derived from the context, reply with exactly "%[1]s" and nothing else.
3. Never invent facts, figures, quotes, names or page numbers.
4. If the context reads "No relevant context found for this query.", "No introductory content found." or "Context retrieval failed. Please try again.", reply with exactly "%[1]s".
5. Keep answers concise. Mention the page when the context makes it obvious.

<context>
%[2]s
</context>`

	// GroundedAnswerUserPrompt wraps the latest question with its context.
	GroundedAnswerUserPrompt = "CONTEXT:\n%s\n\nQUESTION:\n%s"

	// Ollama Configuration
	OllamaDefaultBaseURL = "http://localhost:11434"
	OllamaDefaultModel   = "llama3.1:8b"
)
