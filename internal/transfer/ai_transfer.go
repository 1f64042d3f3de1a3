package transfer

import "github.com/postdock/postdock/internal/models"

type AIMessage struct {
	Role    string `json:"role"` // user, assistant
	Content string `json:"content"`
}

type AIGenerateRequest struct {
	Message                 string             `json:"message"`
	PageContext             models.PageContext `json:"pageContext"`
	Platforms               []string           `json:"platforms"`
	Conversation            []AIMessage        `json:"conversation,omitempty"`
	CurrentDrafts           map[string]string  `json:"currentDrafts,omitempty"`
	GenerateDistinctContent bool               `json:"generateDistinctContent"`
}

type AIIntent struct {
	IsGeneratingPost bool `json:"isGeneratingPost"`
	IsEditing        bool `json:"isEditing"`
}

type AIGenerateResponse struct {
	Response string            `json:"response"`
	Previews map[string]string `json:"previews"`
	Intent   AIIntent          `json:"intent"`
}
