// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Message roles accepted from the front-end.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a consultation. Messages are never stored; they
// live for the duration of a single request.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=20000"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"max=200,dive"`
}

// ChatResponse is the body returned by POST /api/chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ReportRequest is the body of POST /api/generate-report.
type ReportRequest struct {
	Messages []ChatMessage `json:"messages" validate:"max=200,dive"`
}

// ReportResponse is the body returned by POST /api/generate-report.
type ReportResponse struct {
	Report string `json:"report"`
}

// HealthResponse is the body returned by GET /api/health.
type HealthResponse struct {
	Status    string `json:"status"`
	APIKeySet bool   `json:"api_key_set"`
	Model     string `json:"model"`
	Documents int    `json:"documents"`
}

// UserText returns the content of user messages. When latestOnly is set it
// returns only the most recent user message; otherwise all user messages
// joined by a single space.
func UserText(messages []ChatMessage, latestOnly bool) string {
	if latestOnly {
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].Role == RoleUser {
				return messages[i].Content
			}
		}
		return ""
	}

	var parts []string
	for _, m := range messages {
		if m.Role == RoleUser {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, " ")
}
