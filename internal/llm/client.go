package llm

import "context"

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client is the boundary to the completion provider: submit an ordered list
// of role-tagged messages, receive one text completion. Calls may fail
// transiently; callers decide what the user sees.
type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}
