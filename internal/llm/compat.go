package llm

import "fmt"

// DeepSeekReasonerModel is the DeepSeek model that returns a reasoning trace
// alongside its answer.
const DeepSeekReasonerModel = "deepseek-reasoner"

// vendor describes an OpenAI-compatible chat API.
type vendor struct {
	name    string
	baseURL string
	model   string
	aliases map[string]string

	// jsonObjectOnly vendors reject json_schema and max_completion_tokens.
	jsonObjectOnly bool
}

var (
	kimiVendor = vendor{
		name:    "kimi",
		baseURL: "https://api.moonshot.cn/v1",
		model:   "moonshot-v1-8k",
		aliases: map[string]string{
			"kimi":      "moonshot-v1-8k",
			"kimi-8k":   "moonshot-v1-8k",
			"kimi-32k":  "moonshot-v1-32k",
			"kimi-128k": "moonshot-v1-128k",
		},
		jsonObjectOnly: true,
	}
	deepseekVendor = vendor{
		name:    "deepseek",
		baseURL: "https://api.deepseek.com",
		model:   "deepseek-chat",
		aliases: map[string]string{
			"deepseek":    "deepseek-chat",
			"reasoner":    DeepSeekReasonerModel,
			"deepseek-r1": DeepSeekReasonerModel,
		},
		jsonObjectOnly: true,
	}
	// OpenRouter model IDs are vendor-prefixed and pass through untouched.
	openrouterVendor = vendor{
		name:    "openrouter",
		baseURL: "https://openrouter.ai/api/v1",
		model:   "google/gemini-2.0-flash-exp",
	}
)

// NewKimiProvider creates a provider for the Moonshot Kimi chat API.
func NewKimiProvider(cfg CompatConfig) (*OpenAIProvider, error) {
	return kimiVendor.provider(cfg.APIKey, cfg.Model, cfg.BaseURL)
}

// NewDeepSeekProvider creates a provider for the DeepSeek chat API.
func NewDeepSeekProvider(cfg CompatConfig) (*OpenAIProvider, error) {
	return deepseekVendor.provider(cfg.APIKey, cfg.Model, cfg.BaseURL)
}

// NewOpenRouterProvider creates a provider for the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	return openrouterVendor.provider(cfg.APIKey, cfg.Model, cfg.BaseURL)
}

func (v vendor) provider(apiKey, model, baseURL string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", v.name)
	}
	if baseURL == "" {
		baseURL = v.baseURL
	}
	if model == "" {
		model = v.model
	} else if v.aliases != nil {
		model = resolveModel(model, v.aliases)
	}

	p := newOpenAIProviderRaw(OpenAIConfig{APIKey: apiKey, Model: model, BaseURL: baseURL})
	p.name = v.name
	if v.jsonObjectOnly {
		p.format = formatJSONObject
		p.legacyMaxTokens = true
	}
	return p, nil
}
