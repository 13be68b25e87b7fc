package domain

// ChatMessage is the role/content pair used by chat-completion style APIs.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body accepted by the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the body returned by the chat endpoint.
type ChatResponse struct {
	Response string `json:"response"`
}

// Reply is the dispatcher's resolved answer to one message.
type Reply struct {
	Text string
	// Provider names the upstream that produced Text; empty for the
	// empty-message prompt and for fallback answers.
	Provider string
	Fallback bool
}
