package hackaigc

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const base64WindowSize = 32 * 1024

// encodeBase64Chunked feeds the buffer through a streaming encoder in fixed
// 32 KiB windows so large images never need one contiguous conversion pass.
func encodeBase64Chunked(data []byte) string {
	var sb strings.Builder
	sb.Grow(base64.StdEncoding.EncodedLen(len(data)))
	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	for off := 0; off < len(data); off += base64WindowSize {
		end := off + base64WindowSize
		if end > len(data) {
			end = len(data)
		}
		_, _ = enc.Write(data[off:end])
	}
	_ = enc.Close()
	return sb.String()
}

func writeSSE(w http.ResponseWriter, data string) {
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func encodeJSON(v interface{}) string {
	buf := bytes.Buffer{}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimSpace(buf.String())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
