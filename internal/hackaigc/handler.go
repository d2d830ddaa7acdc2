package hackaigc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"hackaigc-api/internal/config"
	"hackaigc-api/internal/metrics"
	"hackaigc-api/internal/middleware"
	"hackaigc-api/internal/template"
)

// Handler owns the OpenAI-compatible surface: routing, the chat relay, the
// image endpoint, and the image-as-chat interception.
type Handler struct {
	cfg      *config.Config
	client   *Client
	renderer *template.Renderer
}

func NewHandler(cfg *config.Config, renderer *template.Renderer) *Handler {
	return &Handler{
		cfg:      cfg,
		client:   NewClient(cfg),
		renderer: renderer,
	}
}

// IsUIPath reports whether the request targets the unauthenticated browser UI.
func IsUIPath(r *http.Request) bool {
	return r.URL.Path == "/" || r.URL.Path == "/index.html"
}

// Dispatch routes by path suffix after stripping an optional /v1 prefix, so
// clients configured with base URLs like /v1 or /openai/v1 all land correctly.
// CORS preflight and bearer auth are handled by the middleware chain in front.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	if IsUIPath(r) {
		h.handleIndex(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1")
	switch {
	case strings.HasSuffix(path, "/chat/completions"):
		h.HandleChatCompletions(w, r)
	case strings.HasSuffix(path, "/images/generations"):
		h.HandleImagesGenerations(w, r)
	case strings.HasSuffix(path, "/models"):
		h.HandleModels(w, r)
	default:
		writeJSONStatus(w, http.StatusNotFound, map[string]interface{}{"error": "Not Found"})
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.renderer == nil {
		http.Error(w, "ui not available", http.StatusNotFound)
		return
	}
	if err := h.renderer.RenderIndex(w, r, h.cfg); err != nil {
		middleware.LogWithTrace(r.Context()).Error("Failed to render index", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, ModelList())
}

func (h *Handler) HandleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req ChatCompletionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ErrorsTotal.WithLabelValues("bad_request").Inc()
		writeJSONStatus(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
		return
	}

	// API clients like Cherry Studio send drawing models into the chat
	// endpoint; intercept those before any upstream chat call happens.
	if Classify(req.Model) == ModelClassImage {
		h.handleImageAsChat(w, r, req.Messages, req.Stream)
		return
	}

	temperature := 0.7
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	resp, err := h.client.DoChat(r.Context(), ResolveUpstreamModel(req.Model), req.Messages, temperature)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("upstream_chat").Inc()
		var ue *UpstreamError
		if errors.As(err, &ue) {
			writeJSONStatus(w, ue.Status, map[string]interface{}{
				"error":   fmt.Sprintf("Upstream Error: %d", ue.Status),
				"details": ue.Body,
			})
			return
		}
		writeJSONStatus(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
		return
	}
	defer resp.Body.Close()

	h.relayChatStream(w, r, req.Model, resp.Body)
}

func (h *Handler) HandleImagesGenerations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req ImagesGenerationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ErrorsTotal.WithLabelValues("bad_request").Inc()
		writeJSONStatus(w, http.StatusInternalServerError, map[string]interface{}{
			"error": map[string]interface{}{"message": err.Error()},
		})
		return
	}

	data, err := h.client.DoImage(r.Context(), req.Prompt)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("upstream_image").Inc()
		status := http.StatusInternalServerError
		var ue *UpstreamError
		if errors.As(err, &ue) {
			status = ue.Status
		}
		writeJSONStatus(w, status, map[string]interface{}{
			"error": map[string]interface{}{"message": err.Error()},
		})
		return
	}

	writeJSON(w, ImagesGenerationsResponse{
		Created: time.Now().Unix(),
		Data: []ImageData{
			{B64JSON: encodeBase64Chunked(data), RevisedPrompt: req.Prompt},
		},
	})
}

const imageFallbackPrompt = "A cute cat"

// lastUserPrompt picks the most recent user message, searching from the end.
func lastUserPrompt(messages []ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return imageFallbackPrompt
}

// handleImageAsChat fabricates a chat completion whose assistant message embeds
// the generated image as a Markdown data URI. The image is fetched before any
// response byte is written, so failures still get a clean 500.
func (h *Handler) handleImageAsChat(w http.ResponseWriter, r *http.Request, messages []ChatMessage, stream bool) {
	prompt := lastUserPrompt(messages)

	data, err := h.client.DoImage(r.Context(), prompt)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("upstream_image").Inc()
		writeJSONStatus(w, http.StatusInternalServerError, map[string]interface{}{
			"error": map[string]interface{}{"message": err.Error()},
		})
		return
	}

	content := "🎨 **绘图完成**\n\n![Generated Image](data:image/png;base64," + encodeBase64Chunked(data) + ")"
	id := "chatcmpl-" + uuid.NewString()
	created := time.Now().Unix()

	if !stream {
		writeJSON(w, ChatCompletion{
			ID:      id,
			Object:  "chat.completion",
			Created: created,
			Model:   imageModelID,
			Choices: []CompletionChoice{
				{Message: ChatMessage{Role: "assistant", Content: content}, FinishReason: "stop"},
			},
		})
		return
	}

	// One single chunk with the whole Markdown body; images are never
	// delivered incrementally.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	finish := "stop"
	chunk := ChatCompletionChunk{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   imageModelID,
		Choices: []ChunkChoice{
			{Delta: Delta{Content: content}, FinishReason: &finish},
		},
	}
	writeSSE(w, encodeJSON(chunk))
	writeSSE(w, sseDone)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
