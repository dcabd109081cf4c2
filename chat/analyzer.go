// Package chat sends an image and a prompt to a vision model through the
// VolcEngine ARK runtime and returns the model's text answer.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
	"github.com/volcengine/volcengine-go-sdk/volcengine"
)

// ErrAPIKeyMissing is returned when no API key has been configured.
var ErrAPIKeyMissing = errors.New("AI service API key is not configured")

type (
	// Request is one analyze call.
	Request struct {
		ImageData string // base64 image without data URI prefix
		MimeType  string
		Prompt    string
	}

	// Result is the answer envelope handed back to the renderer.
	Result struct {
		Success bool   `json:"success"`
		Text    string `json:"text,omitempty"`
		Error   string `json:"error,omitempty"`
	}

	// Status describes the analyzer configuration.
	Status struct {
		IsInitialized bool   `json:"isInitialized"`
		HasAPIKey     bool   `json:"hasApiKey"`
		ModelName     string `json:"modelName"`
	}

	// Analyzer is the AI service as seen by the application.
	Analyzer interface {
		Analyze(ctx context.Context, req Request) (Result, error)
		Status() Status
	}

	// CompleteFunc performs one chat completion call.
	CompleteFunc func(ctx context.Context, req model.CreateChatCompletionRequest) (model.ChatCompletionResponse, error)

	// Opt contains configuration options for an ArkAnalyzer.
	Opt struct {
		apikey   string        // API key for VolcEngine ARK runtime
		baseURL  string        // Optional endpoint override
		timeout  time.Duration // Timeout of one analyze call
		complete CompleteFunc  // Replaces the ARK client, used by tests
	}
	// Opts is a function type for configuring an ArkAnalyzer.
	Opts func(opt *Opt)
)

// WithAPIKey sets the API key for VolcEngine ARK runtime authentication.
func WithAPIKey(k string) Opts {
	return func(opt *Opt) {
		opt.apikey = k
	}
}

// WithBaseURL points the client at a different ARK endpoint.
func WithBaseURL(u string) Opts {
	return func(opt *Opt) {
		opt.baseURL = u
	}
}

// WithTimeout bounds one analyze call.
func WithTimeout(t time.Duration) Opts {
	return func(opt *Opt) {
		opt.timeout = t
	}
}

// WithCompleteFunc replaces the network call.
func WithCompleteFunc(f CompleteFunc) Opts {
	return func(opt *Opt) {
		opt.complete = f
	}
}

// ArkAnalyzer implements Analyzer with a VolcEngine ARK vision model.
type ArkAnalyzer struct {
	model    string
	apikey   string
	timeout  time.Duration
	complete CompleteFunc
}

// New creates an ArkAnalyzer for modelName. Without an API key the analyzer
// still reports its status but every Analyze call fails with ErrAPIKeyMissing.
func New(modelName string, opts ...Opts) *ArkAnalyzer {
	co := &Opt{
		timeout: 180 * time.Second,
	}
	for _, o := range opts {
		o(co)
	}
	a := &ArkAnalyzer{
		model:    modelName,
		apikey:   co.apikey,
		timeout:  co.timeout,
		complete: co.complete,
	}
	if a.complete == nil && a.apikey != "" {
		var cli *arkruntime.Client
		if co.baseURL != "" {
			cli = arkruntime.NewClientWithApiKey(co.apikey, arkruntime.WithBaseUrl(co.baseURL))
		} else {
			cli = arkruntime.NewClientWithApiKey(co.apikey)
		}
		a.complete = func(ctx context.Context, req model.CreateChatCompletionRequest) (model.ChatCompletionResponse, error) {
			return cli.CreateChatCompletion(ctx, req)
		}
	}
	return a
}

// Status reports whether the analyzer can serve requests.
func (a *ArkAnalyzer) Status() Status {
	return Status{
		IsInitialized: a.complete != nil,
		HasAPIKey:     a.apikey != "",
		ModelName:     a.model,
	}
}

// Analyze sends the image and prompt as one user message and returns the
// assistant's text.
func (a *ArkAnalyzer) Analyze(ctx context.Context, req Request) (Result, error) {
	if a.apikey == "" {
		return Result{}, ErrAPIKeyMissing
	}
	if a.complete == nil {
		return Result{}, errors.New("AI client is not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	resp, err := a.complete(ctx, model.CreateChatCompletionRequest{
		Model: a.model,
		Messages: []*model.ChatCompletionMessage{
			{
				Role: model.ChatMessageRoleUser,
				Content: &model.ChatCompletionMessageContent{
					ListValue: []*model.ChatCompletionMessageContentPart{
						{
							Type:     model.ChatCompletionMessageContentPartTypeImageURL,
							ImageURL: &model.ChatMessageImageURL{URL: DataURI(req.MimeType, req.ImageData)},
						},
						{
							Type: model.ChatCompletionMessageContentPartTypeText,
							Text: req.Prompt,
						},
					},
				},
			},
		},
		Stream: volcengine.Bool(false),
	})
	if err != nil {
		return Result{}, err
	}
	text := responseText(resp)
	if text == "" {
		return Result{}, errors.New("AI service returned an empty response")
	}
	return Result{Success: true, Text: text}, nil
}

func responseText(resp model.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	msg := resp.Choices[0].Message
	if msg.Content == nil || msg.Content.StringValue == nil {
		return ""
	}
	return strings.TrimSpace(*msg.Content.StringValue)
}

// DataURI builds the inline image URL sent to the model.
func DataURI(mimeType, data string) string {
	return "data:" + mimeType + ";base64," + data
}

var _ Analyzer = (*ArkAnalyzer)(nil)
