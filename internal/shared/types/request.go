package types

// ExecuteRequest represents a service execution request
type ExecuteRequest struct {
	ToolID string                 `json:"tool_id" binding:"required"`
	Params map[string]interface{} `json:"params"`
	Lesson *string                `json:"lesson,omitempty"`
}

// WSMessage represents an inbound WebSocket message
type WSMessage struct {
	Type     string `json:"type"`
	WidgetID string `json:"widget_id,omitempty"`
	Code     string `json:"code,omitempty"`
	Choice   *int   `json:"choice,omitempty"`
	Dark     *bool  `json:"dark,omitempty"`
}
