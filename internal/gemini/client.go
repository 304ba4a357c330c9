package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/timmy/epigraph/internal/domain"
	"github.com/timmy/epigraph/internal/logger"
	"github.com/timmy/epigraph/internal/prompts"
	"google.golang.org/api/option"
)

const (
	defaultModel           = "gemini-1.5-flash"
	defaultMaxOutputTokens = 1000

	// Vendor role label for assistant turns.
	roleModel = "model"
	roleUser  = "user"
)

// Config holds configuration for the Gemini gateway.
type Config struct {
	APIKey          string
	Model           string
	MaxOutputTokens int
	TargetLanguage  string
}

// backend is the slice of the SDK the gateway uses.
type backend interface {
	Generate(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
	SendChat(ctx context.Context, history []*genai.Content, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type sdkBackend struct {
	vision *genai.GenerativeModel
	chat   *genai.GenerativeModel
}

func (b *sdkBackend) Generate(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	return b.vision.GenerateContent(ctx, parts...)
}

func (b *sdkBackend) SendChat(ctx context.Context, history []*genai.Content, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	cs := b.chat.StartChat()
	cs.History = history
	return cs.SendMessage(ctx, parts...)
}

// Client is the AI gateway: it builds prompts, calls the Gemini vision and chat
// endpoints and turns their answers into domain values. It holds no state
// between calls.
type Client struct {
	sdk     *genai.Client
	backend backend
	model   string
	prompt  string
}

// NewClient creates a Gemini gateway backed by the official SDK.
// Parameters:
//   - ctx: context used while dialing the SDK client.
//   - cfg: API key, model and output settings.
//
// Returns:
//   - *Client: ready-to-use gateway.
//   - error: non-nil if the key is missing or the SDK client cannot be created.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key must not be empty")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}

	sdk, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	vision := sdk.GenerativeModel(model)
	chat := sdk.GenerativeModel(model)
	chat.SetMaxOutputTokens(int32(maxTokens))

	c := newClient(&sdkBackend{vision: vision, chat: chat}, model, cfg.TargetLanguage)
	c.sdk = sdk
	return c, nil
}

func newClient(b backend, model, targetLanguage string) *Client {
	return &Client{
		backend: b,
		model:   model,
		prompt:  prompts.AnalysisPrompt(targetLanguage),
	}
}

// Model returns the model name being used.
func (c *Client) Model() string {
	return c.model
}

// Close releases the underlying SDK connection.
func (c *Client) Close() error {
	if c.sdk == nil {
		return nil
	}
	return c.sdk.Close()
}

// AnalyzeImage asks the vision model to identify, transcribe and translate the
// inscription in an image.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - image: raw image bytes of a supported raster format. Size is the caller's concern.
//   - mimeType: declared MIME type of the image.
//
// Returns:
//   - *domain.AnalysisResult: parsed result, or the fallback object when the
//     model answer holds no usable JSON.
//   - error: *domain.AIGatewayError on transport/auth failure or an empty answer.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, mimeType string) (*domain.AnalysisResult, error) {
	start := time.Now()

	resp, err := c.backend.Generate(ctx, genai.Text(c.prompt), genai.Blob{MIMEType: mimeType, Data: image})
	if err != nil {
		return nil, &domain.AIGatewayError{Op: "analyze_image", Err: err}
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, &domain.AIGatewayError{Op: "analyze_image", Err: err}
	}

	result, parseErr := parseAnalysis(text)
	log := logger.FromContext(ctx).WithFields(logger.Fields{
		"model":                c.model,
		"response_length":      len(text),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	})
	if parseErr != nil {
		log.WithError(parseErr).Warn("Model answer held no analysis object, using fallback")
	} else {
		log.WithField("script_type", result.ScriptType).Debug("Image analyzed")
	}

	return result, nil
}

// Chat sends one user message on top of the prior conversation.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - message: the new user message, already composed by the caller.
//   - history: prior turns in chronological order; never modified.
//
// Returns:
//   - string: the model's plain-text reply.
//   - error: *domain.AIGatewayError on transport/auth failure or an empty answer.
func (c *Client) Chat(ctx context.Context, message string, history []domain.ChatMessage) (string, error) {
	resp, err := c.backend.SendChat(ctx, toContents(history), genai.Text(message))
	if err != nil {
		return "", &domain.AIGatewayError{Op: "chat", Err: err}
	}

	text, err := responseText(resp)
	if err != nil {
		return "", &domain.AIGatewayError{Op: "chat", Err: err}
	}
	return text, nil
}

// toContents maps conversation turns onto fresh SDK contents. Assistant turns
// use the vendor's "model" role.
func toContents(history []domain.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := roleUser
		if msg.Role == domain.ChatRoleAssistant {
			role = roleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return contents
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason.String())
		}
		return "", errors.New("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content in response (finish reason: %s)", candidate.FinishReason.String())
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("response contained no text")
	}
	return text, nil
}
