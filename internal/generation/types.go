package generation

import "context"

// ImageRequest carries everything one image call needs. The key and model
// arrive per request because configuration is re-read on every prompt
// iteration; the client holds no credential state.
type ImageRequest struct {
	Prompt  string
	APIKey  string
	Model   string
	Size    string
	Quality string
}

// ImageResult is the decoded asset returned by the images endpoint.
type ImageResult struct {
	Data   []byte
	Width  int
	Height int
	MIME   string
}

// TextRequest is one chat-completion call.
type TextRequest struct {
	Prompt    string
	APIKey    string
	Model     string
	MaxTokens int
}

// VisionRequest asks the model to describe an uploaded image under the
// given instructions.
type VisionRequest struct {
	ImageData    []byte
	MIME         string
	Instructions string
	APIKey       string
	Model        string
	MaxTokens    int
}

// ImageGenerator is the boundary the worker depends on.
type ImageGenerator interface {
	Generate(ctx context.Context, req ImageRequest) (*ImageResult, error)
}

// TextGenerator is the boundary the prompt generator and deconstructor
// depend on.
type TextGenerator interface {
	Complete(ctx context.Context, req TextRequest) (string, error)
	DescribeImage(ctx context.Context, req VisionRequest) (string, error)
}
