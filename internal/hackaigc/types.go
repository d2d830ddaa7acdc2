package hackaigc

// ChatCompletionsRequest is the OpenAI-style request accepted on
// /chat/completions. Per-message fields beyond role/content are dropped at
// decode time, which is exactly the reduction the upstream payload needs.
type ChatCompletionsRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionChunk is one fabricated SSE delta frame.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

type ChunkChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

type Delta struct {
	Content string `json:"content"`
}

// ChatCompletion is the non-streamed completion object, used only by the
// image-as-chat sub-flow; plain chat always relays as a stream.
type ChatCompletion struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
}

type CompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type ImagesGenerationsRequest struct {
	Prompt string `json:"prompt"`
}

type ImagesGenerationsResponse struct {
	Created int64       `json:"created"`
	Data    []ImageData `json:"data"`
}

type ImageData struct {
	B64JSON       string `json:"b64_json"`
	RevisedPrompt string `json:"revised_prompt"`
}

type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

type ModelsResponse struct {
	Object string      `json:"object"`
	Data   []ModelInfo `json:"data"`
}

// upstreamChatPayload mirrors what chat.hackaigc.com expects on /api/chat.
// The guest id doubles as user_id and deviceId; prompt stays empty because the
// conversation travels in messages.
type upstreamChatPayload struct {
	UserID          string        `json:"user_id"`
	UserLevel       string        `json:"user_level"`
	Model           string        `json:"model"`
	Messages        []ChatMessage `json:"messages"`
	Prompt          string        `json:"prompt"`
	Temperature     float64       `json:"temperature"`
	EnableWebSearch bool          `json:"enableWebSearch"`
	UsedVoiceInput  bool          `json:"usedVoiceInput"`
	DeviceID        string        `json:"deviceId"`
}

type upstreamImagePayload struct {
	Prompt    string `json:"prompt"`
	UserID    string `json:"user_id"`
	DeviceID  string `json:"device_id"`
	UserLevel string `json:"user_level"`
}
