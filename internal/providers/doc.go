// Package providers implements the Reviewer interface for each supported LLM
// provider.
//
// Supported providers: Ollama for local models, OpenAI (GPT), and Google
// (Gemini). Ollama speaks the native chat API with a fallback to the older
// generate API; OpenAI goes through the chat completions endpoint; Gemini
// uses the official SDK with JSON response mode.
//
// All providers share a common retry helper with exponential back-off for
// rate-limit and transient server errors. Tests point the HTTP providers at
// local httptest servers so no live API requests are made.
//
// Use [New] to obtain a Reviewer by provider name and model string.
package providers
