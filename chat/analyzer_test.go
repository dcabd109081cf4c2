package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
	"github.com/volcengine/volcengine-go-sdk/volcengine"
)

const pixel = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func answer(text string) model.ChatCompletionResponse {
	return model.ChatCompletionResponse{
		Choices: []*model.ChatCompletionChoice{
			{
				Message: model.ChatCompletionMessage{
					Role:    model.ChatMessageRoleAssistant,
					Content: &model.ChatCompletionMessageContent{StringValue: volcengine.String(text)},
				},
			},
		},
	}
}

func TestRequestValidate(t *testing.T) {
	ok := Request{ImageData: pixel, MimeType: "image/png", Prompt: "what is this?"}
	require.NoError(t, ok.Validate())

	tests := map[string]Request{
		"empty image":    {MimeType: "image/png", Prompt: "p"},
		"empty mime":     {ImageData: pixel, Prompt: "p"},
		"empty prompt":   {ImageData: pixel, MimeType: "image/png"},
		"svg":            {ImageData: pixel, MimeType: "image/svg+xml", Prompt: "p"},
		"bad alphabet":   {ImageData: "ab-_", MimeType: "image/png", Prompt: "p"},
		"bad length":     {ImageData: "abc", MimeType: "image/png", Prompt: "p"},
		"inner padding":  {ImageData: "ab=c", MimeType: "image/png", Prompt: "p"},
		"three pad":      {ImageData: "a===", MimeType: "image/png", Prompt: "p"},
		"data uri given": {ImageData: "data:image/png;base64," + pixel, MimeType: "image/png", Prompt: "p"},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, req.Validate())
		})
	}
	for _, mt := range AllowedMimeTypes {
		r := ok
		r.MimeType = mt
		assert.NoError(t, r.Validate(), mt)
	}
}

func TestStatus(t *testing.T) {
	a := New("vision-pro")
	assert.Equal(t, Status{IsInitialized: false, HasAPIKey: false, ModelName: "vision-pro"}, a.Status())

	a = New("vision-pro", WithAPIKey("k"))
	assert.Equal(t, Status{IsInitialized: true, HasAPIKey: true, ModelName: "vision-pro"}, a.Status())
}

func TestAnalyzeWithoutKey(t *testing.T) {
	a := New("m", WithCompleteFunc(func(context.Context, model.CreateChatCompletionRequest) (model.ChatCompletionResponse, error) {
		t.Fatal("must not call the service")
		return model.ChatCompletionResponse{}, nil
	}))
	_, err := a.Analyze(context.Background(), Request{ImageData: pixel, MimeType: "image/png", Prompt: "p"})
	assert.ErrorIs(t, err, ErrAPIKeyMissing)
}

func TestAnalyzeBuildsMultimodalRequest(t *testing.T) {
	var got model.CreateChatCompletionRequest
	a := New("vision-pro", WithAPIKey("k"), WithCompleteFunc(func(_ context.Context, req model.CreateChatCompletionRequest) (model.ChatCompletionResponse, error) {
		got = req
		return answer("  a red pixel \n"), nil
	}))
	res, err := a.Analyze(context.Background(), Request{ImageData: pixel, MimeType: "image/png", Prompt: "describe"})
	require.NoError(t, err)
	assert.Equal(t, Result{Success: true, Text: "a red pixel"}, res)

	assert.Equal(t, "vision-pro", got.Model)
	require.Len(t, got.Messages, 1)
	parts := got.Messages[0].Content.ListValue
	require.Len(t, parts, 2)
	assert.Equal(t, model.ChatCompletionMessageContentPartTypeImageURL, parts[0].Type)
	assert.Equal(t, "data:image/png;base64,"+pixel, parts[0].ImageURL.URL)
	assert.Equal(t, "describe", parts[1].Text)
}

func TestAnalyzeErrors(t *testing.T) {
	a := New("m", WithAPIKey("k"), WithCompleteFunc(func(context.Context, model.CreateChatCompletionRequest) (model.ChatCompletionResponse, error) {
		return model.ChatCompletionResponse{}, errors.New("quota exceeded")
	}))
	_, err := a.Analyze(context.Background(), Request{ImageData: pixel, MimeType: "image/png", Prompt: "p"})
	assert.EqualError(t, err, "quota exceeded")

	a = New("m", WithAPIKey("k"), WithCompleteFunc(func(context.Context, model.CreateChatCompletionRequest) (model.ChatCompletionResponse, error) {
		return model.ChatCompletionResponse{}, nil
	}))
	_, err = a.Analyze(context.Background(), Request{ImageData: pixel, MimeType: "image/png", Prompt: "p"})
	assert.Error(t, err)
}

func TestAnalyzeTimeout(t *testing.T) {
	a := New("m", WithAPIKey("k"), WithTimeout(20*time.Millisecond), WithCompleteFunc(func(ctx context.Context, _ model.CreateChatCompletionRequest) (model.ChatCompletionResponse, error) {
		<-ctx.Done()
		return model.ChatCompletionResponse{}, ctx.Err()
	}))
	_, err := a.Analyze(context.Background(), Request{ImageData: pixel, MimeType: "image/png", Prompt: "p"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
