package annotator

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/agent-api/core/pkg/agent"
	"github.com/agent-api/core/types"
	"github.com/agent-api/ollama"
)

// ResolveOllama applies the local-instance defaults for an empty host
// or zero port.
func ResolveOllama(host string, port int) (string, int) {
	if host == "" {
		host = "http://localhost"
	}
	if port == 0 {
		port = 11434
	}
	return host, port
}

// NewAgent initializes a vision agent against an Ollama instance for
// generating candidate region descriptions.
func NewAgent(ctx context.Context, logger *slog.Logger, model, host string, port int) (*agent.DefaultAgent, error) {
	host, port = ResolveOllama(host, port)

	// Check if Ollama is running
	_, err := exec.Command("curl", "-s", fmt.Sprintf("%s:%d/api/tags", host, port)).Output()
	if err != nil {
		return nil, err
	}

	opts := &ollama.ProviderOpts{
		Logger:  logger,
		BaseURL: host,
		Port:    port,
	}
	provider := ollama.NewProvider(opts)

	provider.UseModel(ctx, &types.Model{ID: model})

	agentConf := &agent.NewAgentConfig{
		Provider:     provider,
		Logger:       logger,
		SystemPrompt: "You are a visual annotation assistant. Describe the object inside the red box so that a person who cannot see the box could locate it in the image. Mention color, position and nearby objects. Keep it to one or two sentences.",
	}

	return agent.NewAgent(agentConf), nil
}
