// Package provider resolves a (provider, model) pair to a driver for the
// gateway's streaming orchestrator.
//
// # Core Components
//
//   - Provider: the interface every driver (Anthropic-messages-shaped,
//     OpenAI-chat-shaped) implements.
//   - Factory: builds a Provider for one resolved (provider, model,
//     credentials) tuple per request — gateway credentials are per-user
//     BYOK keys, so nothing is cached process-wide the way a CLI's
//     startup-time registry would.
//   - Registry: the static per-provider model catalog (seeded defaults;
//     the OpenRouter lists start empty and are not refreshed) backing
//     GET /api/ai/models.
//   - CapabilityOracle: answers whether a resolved model supports tool
//     calling, using a tool-support map it refreshes hourly from
//     OpenRouter's live catalog. Vision support is the separate
//     HasVisionCapability name heuristic.
//
// # Supported providers
//
// KnownProviders is the fixed enumeration: pagespace, openrouter,
// openrouter_free, google, openai, anthropic, xai, ollama, lmstudio, glm,
// minimax. pagespace/anthropic/minimax route through the
// Anthropic-messages-shaped driver; every other provider (including
// google, whose Gemini REST surface is OpenAI-compatible) routes through
// the OpenAI-chat-shaped driver with a provider-specific base URL.
//
//	factory := &provider.Factory{}
//	p, err := factory.New(ctx, "anthropic", "claude-sonnet-4-20250514", creds)
//
// # Streaming completions
//
// Every driver implements the same streaming interface:
//
//	stream, err := p.CreateCompletion(ctx, &CompletionRequest{
//	    Model:     "claude-sonnet-4-20250514",
//	    Messages:  messages,
//	    Tools:     tools,
//	    MaxTokens: 4096,
//	})
//	for {
//	    msg, err := stream.Recv()
//	    if err != nil {
//	        break
//	    }
//	    // forward msg to the SSE sink
//	}
//	stream.Close()
//
// # Tool calling
//
// ConvertToEinoTools/ConvertToEinoMessages translate the gateway's tool
// catalog and conversation history into Eino's wire shapes.
//
// # Integration with Eino
//
// Every driver is built on github.com/cloudwego/eino and its
// eino-ext/components/model/* adapters, which provide the streaming
// interface, tool-calling support, and message schema definitions this
// package's types wrap.
package provider
