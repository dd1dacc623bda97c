package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"cube-solver/api/internal/llm"
)

type Engine struct {
	APIKey      string
	VisionModel string
	TextModel   string

	// opts добавляются к option.WithAPIKey (эндпоинт, http-клиент)
	opts []option.ClientOption
}

func New(apiKey, visionModel, textModel string, opts ...option.ClientOption) *Engine {
	return &Engine{
		APIKey:      strings.TrimSpace(apiKey),
		VisionModel: strings.TrimSpace(visionModel),
		TextModel:   strings.TrimSpace(textModel),
		opts:        opts,
	}
}

func (e *Engine) Name() string { return "gemini" }

// --------------------------- VISION ---------------------------

// Vision отправляет [инструкция, картинка] и возвращает текст ответа как есть.
func (e *Engine) Vision(ctx context.Context, prompt string, image []byte, mime string) (string, error) {
	if mime == "" {
		mime = "image/png"
	}
	return e.generate(ctx, e.VisionModel, visionParts(prompt, image, mime)...)
}

// --------------------------- TEXT ---------------------------

func (e *Engine) Text(ctx context.Context, prompt string) (string, error) {
	return e.generate(ctx, e.TextModel, genai.Text(prompt))
}

func visionParts(prompt string, image []byte, mime string) []genai.Part {
	return []genai.Part{
		genai.Text(prompt),
		genai.Blob{MIMEType: mime, Data: image},
	}
}

func (e *Engine) generate(ctx context.Context, model string, parts ...genai.Part) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GOOGLE_API_KEY is empty")
	}
	if model == "" {
		return "", errors.New("gemini: model is empty")
	}
	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(e.APIKey)}, e.opts...)...)
	if err != nil {
		return "", fmt.Errorf("gemini: client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	// Возвращаем строго JSON
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", model, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", llm.ErrEmptyResponse
	}
	return strings.TrimSpace(firstText(resp)), nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
