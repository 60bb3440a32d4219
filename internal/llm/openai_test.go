package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClient_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewOpenAIClient()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestNewOpenAIClient(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	c, err := NewOpenAIClient()
	require.NoError(t, err)
	assert.NotNil(t, c)
}
