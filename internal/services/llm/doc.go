// Package llm wraps the OpenRouter chat completion API used to break a prose
// script into visual scenes. The client retries transient HTTP failures with
// capped exponential backoff; the returned text is treated as untrusted and
// normalized by the scenes package.
package llm
