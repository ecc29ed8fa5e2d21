package intent

import "github.com/pkoval/regassist/internal/engine"

const routerSystemPrompt = `You are an expert query classifier. Your task is to determine the user's intent and route their question to the correct tool.

You have three tools available:
1. portfolio_summary: Use this for questions asking for a summary, portfolio, or detailed information about a SINGLE, SPECIFIC student (e.g., by name, ID, or email).
2. general_query: Use this for any question that involves searching, filtering, or listing information across MULTIPLE students from the student records database.
3. general_conversation: Use this for all other questions, including greetings, chit-chat, or general knowledge questions that are NOT about the student data (e.g., "what is machine learning?", "who is the president?").

Based on the user's question, respond with ONLY the name of the correct tool.`

// BuildPrompt constructs the chat messages for tool routing.
func BuildPrompt(question string) []engine.Message {
	return []engine.Message{
		{Role: "system", Content: routerSystemPrompt},
		{Role: "user", Content: question},
	}
}
