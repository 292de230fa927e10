package domain

// InferenceRequest is one call to the inference server.
type InferenceRequest struct {
	Model    string
	Endpoint string
	Prompt   string
	// System is sent as the "system" field when non-empty.
	System string
	Stream bool
}

// ModelInfo describes a model installed on the inference server.
type ModelInfo struct {
	Name string
	Size int64
}
