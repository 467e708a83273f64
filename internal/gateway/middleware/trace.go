package middleware

import (
	"net/http"

	"orgdiag/internal/llm"
)

// PromptTrace attaches hook to each request context, so every model call
// made while serving the request reports to it.
func PromptTrace(hook llm.PromptHook, next http.Handler) http.Handler {
	if hook == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(llm.WithPromptHook(r.Context(), hook)))
	})
}
