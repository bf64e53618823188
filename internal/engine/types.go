package engine

// --- Source preview types ---

type PreviewInput struct {
	URL       string `json:"url" jsonschema:"YouTube video URL to preview"`
	MaxLength int    `json:"max_length,omitempty" jsonschema:"Max content characters (default: engine limit)"`
}

type PreviewOutput struct {
	URL         string `json:"url"`
	VideoID     string `json:"video_id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
	Truncated   bool   `json:"truncated"`
}
