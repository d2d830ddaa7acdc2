package hackaigc

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"hackaigc-api/internal/metrics"
	"hackaigc-api/internal/middleware"
)

const (
	sseDone = "[DONE]"

	// citationsMarker tags upstream citation frames, which OpenAI clients
	// cannot render and which must never leak into the relay.
	citationsMarker = `"type":"citations"`

	relayBufferSize = 4096
)

// relayChatStream re-frames the upstream byte stream as chat.completion.chunk
// SSE events. Fragment boundaries are whatever the transport delivered; a
// fragment is never assumed to be a complete line or JSON object. The reported
// model is the one the client asked for, not the upstream one.
func (h *Handler) relayChatStream(w http.ResponseWriter, r *http.Request, model string, body io.Reader) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)

	id := "chatcmpl-" + uuid.NewString()
	buf := make([]byte, relayBufferSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			fragment := string(buf[:n])
			if !strings.Contains(fragment, citationsMarker) {
				chunk := ChatCompletionChunk{
					ID:      id,
					Object:  "chat.completion.chunk",
					Created: time.Now().Unix(),
					Model:   model,
					Choices: []ChunkChoice{
						{Delta: Delta{Content: fragment}},
					},
				}
				writeSSE(w, encodeJSON(chunk))
				if flusher != nil {
					flusher.Flush()
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			// Headers are long gone; an error frame is the only channel left.
			// A cancelled downstream context lands here too, which tears the
			// upstream body down with it. No retry either way.
			metrics.ErrorsTotal.WithLabelValues("stream").Inc()
			middleware.LogWithTrace(r.Context()).Warn("chat relay interrupted", "error", err)
			writeSSE(w, encodeJSON(map[string]string{"error": err.Error()}))
			if flusher != nil {
				flusher.Flush()
			}
			return
		}
	}

	writeSSE(w, sseDone)
	if flusher != nil {
		flusher.Flush()
	}
}
