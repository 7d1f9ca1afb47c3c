package modelcaps

import "github.com/jmylchreest/modelcaps/capability"

// defaultProviderCapabilities is the static heuristic table consulted when
// every other tier is silent. It maps each capability to the providers
// assumed to support it across their current model lineups; per-model
// exceptions belong in the empirical cache, not here.
func defaultProviderCapabilities() map[capability.Capability][]string {
	return map[capability.Capability][]string{
		capability.StructuredOutput: {
			"openai", "anthropic", "google", "azure", "xai", "mistral",
			"fireworks", "cerebras", "groq",
		},
		capability.Vision: {
			"openai", "anthropic", "google", "azure", "xai", "mistral",
		},
		capability.FunctionCalling: {
			"openai", "anthropic", "google", "azure", "xai", "mistral",
			"groq", "deepseek", "fireworks", "together", "cohere", "bedrock",
		},
		capability.Streaming: {
			"openai", "anthropic", "google", "azure", "xai", "mistral",
			"groq", "deepseek", "fireworks", "together", "cohere", "bedrock",
			"openrouter", "ollama", "perplexity",
		},
		capability.JSONMode: {
			"openai", "azure", "google", "xai", "mistral", "groq",
			"deepseek", "fireworks", "together",
		},
		capability.Reasoning: {
			"openai", "anthropic", "google", "xai", "deepseek",
		},
		capability.ImageGeneration: {
			"openai", "google", "azure", "xai",
		},
		capability.SpeechGeneration: {
			"openai", "azure", "google",
		},
		capability.Transcription: {
			"openai", "azure", "google", "groq",
		},
		capability.Translation: {
			"openai", "azure",
		},
		capability.Citations: {
			"anthropic", "cohere", "perplexity",
		},
		capability.PredictedOutputs: {
			"openai", "azure",
		},
		capability.Distillation: {
			"openai",
		},
		capability.FineTuning: {
			"openai", "azure", "google", "mistral", "together", "fireworks",
		},
		capability.Batch: {
			"openai", "anthropic", "azure", "google", "mistral", "groq",
		},
		capability.Realtime: {
			"openai", "azure",
		},
		capability.Caching: {
			"openai", "anthropic", "google", "deepseek",
		},
		capability.Moderation: {
			"openai", "azure", "mistral",
		},
	}
}
