package hackaigc

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

// fragmentReader delivers exactly one pre-cut fragment per Read call, then the
// terminal error, so fragment boundaries in tests are fully deterministic.
type fragmentReader struct {
	fragments []string
	final     error
}

func (f *fragmentReader) Read(p []byte) (int, error) {
	if len(f.fragments) == 0 {
		if f.final != nil {
			return 0, f.final
		}
		return 0, io.EOF
	}
	n := copy(p, f.fragments[0])
	f.fragments = f.fragments[1:]
	return n, nil
}

// parseSSEFrames splits a raw SSE body into its data payloads.
func parseSSEFrames(t *testing.T, body string) []string {
	t.Helper()
	var frames []string
	for _, block := range strings.Split(body, "\n\n") {
		if block == "" {
			continue
		}
		if !strings.HasPrefix(block, "data: ") {
			t.Fatalf("frame without data prefix: %q", block)
		}
		frames = append(frames, strings.TrimPrefix(block, "data: "))
	}
	return frames
}

func decodeChunk(t *testing.T, frame string) ChatCompletionChunk {
	t.Helper()
	var chunk ChatCompletionChunk
	if err := json.Unmarshal([]byte(frame), &chunk); err != nil {
		t.Fatalf("frame %q is not a chunk: %v", frame, err)
	}
	return chunk
}

func TestRelayChatStreamReframesFragments(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/chat/completions", nil)

	body := &fragmentReader{fragments: []string{"Hello", " world"}}
	h.relayChatStream(rec, req, "gpt-4o", body)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type=%q", ct)
	}
	if !rec.Flushed {
		t.Fatalf("stream was never flushed")
	}

	frames := parseSSEFrames(t, rec.Body.String())
	if len(frames) != 3 {
		t.Fatalf("got %d frames want 3: %v", len(frames), frames)
	}
	if frames[2] != "[DONE]" {
		t.Fatalf("last frame=%q want [DONE]", frames[2])
	}

	first := decodeChunk(t, frames[0])
	if first.Object != "chat.completion.chunk" {
		t.Fatalf("object=%q", first.Object)
	}
	if first.Model != "gpt-4o" {
		t.Fatalf("model=%q want requested model echoed back", first.Model)
	}
	if !strings.HasPrefix(first.ID, "chatcmpl-") {
		t.Fatalf("id=%q missing chatcmpl- prefix", first.ID)
	}
	if first.Choices[0].Delta.Content != "Hello" {
		t.Fatalf("delta=%q", first.Choices[0].Delta.Content)
	}
	if first.Choices[0].FinishReason != nil {
		t.Fatalf("mid-stream chunk carries finish_reason")
	}

	second := decodeChunk(t, frames[1])
	if second.Choices[0].Delta.Content != " world" {
		t.Fatalf("delta=%q", second.Choices[0].Delta.Content)
	}
	if second.ID != first.ID {
		t.Fatalf("chunk ids differ within one stream: %q vs %q", first.ID, second.ID)
	}
}

func TestRelayChatStreamDropsCitationFragments(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/chat/completions", nil)

	body := &fragmentReader{fragments: []string{
		"before",
		`{"type":"citations","data":["https://example.com"]}`,
		"after",
	}}
	h.relayChatStream(rec, req, "gpt-4o", body)

	raw := rec.Body.String()
	if strings.Contains(raw, "citations") {
		t.Fatalf("citation fragment leaked into the relay: %s", raw)
	}

	frames := parseSSEFrames(t, raw)
	if len(frames) != 3 {
		t.Fatalf("got %d frames want 3 (two content, one [DONE]): %v", len(frames), frames)
	}
	if decodeChunk(t, frames[0]).Choices[0].Delta.Content != "before" {
		t.Fatalf("first content frame wrong")
	}
	if decodeChunk(t, frames[1]).Choices[0].Delta.Content != "after" {
		t.Fatalf("second content frame wrong")
	}
}

func TestRelayChatStreamEmitsErrorFrameOnInterrupt(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/chat/completions", nil)

	body := &fragmentReader{
		fragments: []string{"partial"},
		final:     errors.New("connection reset"),
	}
	h.relayChatStream(rec, req, "gpt-4o", body)

	frames := parseSSEFrames(t, rec.Body.String())
	if len(frames) != 2 {
		t.Fatalf("got %d frames want 2: %v", len(frames), frames)
	}

	var errFrame map[string]string
	if err := json.Unmarshal([]byte(frames[1]), &errFrame); err != nil {
		t.Fatalf("error frame is not JSON: %v", err)
	}
	if errFrame["error"] != "connection reset" {
		t.Fatalf("error frame=%v", errFrame)
	}
	if strings.Contains(rec.Body.String(), "[DONE]") {
		t.Fatalf("interrupted stream must not end with [DONE]")
	}
}

func TestRelayChatStreamEmptyBody(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/chat/completions", nil)

	h.relayChatStream(rec, req, "gpt-4o", &fragmentReader{})

	frames := parseSSEFrames(t, rec.Body.String())
	if len(frames) != 1 || frames[0] != "[DONE]" {
		t.Fatalf("empty upstream body should yield only [DONE], got %v", frames)
	}
}
