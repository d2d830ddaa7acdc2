package hackaigc

import "strings"

// ModelSpec defines one public model and its upstream counterpart.
type ModelSpec struct {
	ID            string
	UpstreamModel string
	IsImage       bool
}

// SupportedModels is the static public model table. Its order is the order
// /models reports.
var SupportedModels = []ModelSpec{
	{ID: "gpt-4o", UpstreamModel: "gpt-4o"},
	{ID: "o1-mini", UpstreamModel: "o3-mini"},
	{ID: "claude-3-opus", UpstreamModel: "mistral"},
	{ID: "midjourney", UpstreamModel: "midjourney", IsImage: true},
}

const (
	// defaultChatModel is what unknown model ids silently map to.
	defaultChatModel = "gpt-3.5-turbo"
	imageModelID     = "midjourney"
	modelsOwner      = "hackaigc"
	modelsCreated    = 1677610602
)

var modelByID = func() map[string]ModelSpec {
	out := make(map[string]ModelSpec, len(SupportedModels))
	for _, m := range SupportedModels {
		out[m.ID] = m
	}
	return out
}()

// ModelClass tags which response mode a chat request takes.
type ModelClass int

const (
	ModelClassChat ModelClass = iota
	ModelClassImage
)

// Classify decides the response mode once per request. Image routing keys on
// case-sensitive substring containment so ids like "midjourney-v6" still land
// on the image flow, matching how API clients name their drawing models.
func Classify(model string) ModelClass {
	if strings.Contains(model, imageModelID) {
		return ModelClassImage
	}
	return ModelClassChat
}

// ResolveUpstreamModel maps a public model id to the upstream one. Unknown ids
// fall back to the default conversational model instead of failing.
func ResolveUpstreamModel(model string) string {
	if m, ok := modelByID[model]; ok {
		return m.UpstreamModel
	}
	return defaultChatModel
}

// ModelList builds the /models listing from the static table.
func ModelList() ModelsResponse {
	data := make([]ModelInfo, 0, len(SupportedModels))
	for _, m := range SupportedModels {
		data = append(data, ModelInfo{
			ID:      m.ID,
			Object:  "model",
			Created: modelsCreated,
			OwnedBy: modelsOwner,
		})
	}
	return ModelsResponse{Object: "list", Data: data}
}
