package googleai

import (
	"context"
	"testing"

	"github.com/poiesic/bioorbit/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	response *llms.ContentResponse
	messages []llms.MessageContent
	options  llms.CallOptions
	closed   int
}

func (m *fakeModel) Close() error {
	m.closed++
	return nil
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, opt := range options {
		opt(&m.options)
	}
	return m.response, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestGenerator_SendsSystemInstruction(t *testing.T) {
	model := &fakeModel{response: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: `{"riskLevel":"Low"}`}},
	}}
	gen := newGeneratorWithModel(model)

	reply, err := gen.GenerateJSON(context.Background(), "be brief", "analyze this")
	require.NoError(t, err)
	assert.Equal(t, `{"riskLevel":"Low"}`, reply)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, []llms.ContentPart{llms.TextContent{Text: "be brief"}}, model.messages[0].Parts)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, []llms.ContentPart{llms.TextContent{Text: "analyze this"}}, model.messages[1].Parts)
	assert.True(t, model.options.JSONMode)
}

func TestGenerator_CloseReleasesClient(t *testing.T) {
	model := &fakeModel{}
	gen := newGeneratorWithModel(model)

	require.NoError(t, gen.Close())
	assert.Equal(t, 1, model.closed)
}

func TestGenerator_EmptyResponse(t *testing.T) {
	gen := newGeneratorWithModel(&fakeModel{response: &llms.ContentResponse{}})

	_, err := gen.GenerateJSON(context.Background(), "s", "p")
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestProvider(t *testing.T) {
	provider, err := NewProvider(ai.DefaultConfig(), nil)
	require.NoError(t, err)
	defer provider.Close()

	assert.Nil(t, provider.Embedder())

	_, err = provider.Generator(context.Background(), "")
	assert.ErrorIs(t, err, ai.ErrCredentialRequired)
}
