package entity

const (
	ContentTypeText  = "text"
	ContentTypeImage = "image"

	ImageSourceBase64 = "base64"

	RoleUser = "user"
)

type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// ContentPart is a single typed unit (text or image) of a completion message
type ContentPart struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: ContentTypeText, Text: text}
}

func ImagePart(mediaType, base64Data string) ContentPart {
	return ContentPart{
		Type: ContentTypeImage,
		Source: &ImageSource{
			Type:      ImageSourceBase64,
			MediaType: mediaType,
			Data:      base64Data,
		},
	}
}

type CompletionMessage struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

type CompletionRequest struct {
	Model     string              `json:"model"`
	MaxTokens int                 `json:"max_tokens"`
	Messages  []CompletionMessage `json:"messages"`
}

type CompletionResponse struct {
	ID         string        `json:"id,omitempty"`
	Model      string        `json:"model,omitempty"`
	StopReason string        `json:"stop_reason,omitempty"`
	Content    []ContentPart `json:"content"`
}

// CompletionErrorBody is the error envelope returned by the completion API
type CompletionErrorBody struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
