package models

// MessageType tags a request sent to the router.
type MessageType string

const (
	MsgGetCurrentTabs      MessageType = "GET_CURRENT_TABS"
	MsgGetSessions         MessageType = "GET_SESSIONS"
	MsgSaveSession         MessageType = "SAVE_SESSION"
	MsgUpdateSession       MessageType = "UPDATE_SESSION"
	MsgDeleteSession       MessageType = "DELETE_SESSION"
	MsgRestoreSession      MessageType = "RESTORE_SESSION"
	MsgGenerateSessionName MessageType = "GENERATE_SESSION_NAME"
	MsgGetSettings         MessageType = "GET_SETTINGS"
	MsgUpdateSettings      MessageType = "UPDATE_SETTINGS"
	MsgSearchSessions      MessageType = "SEARCH_SESSIONS"
	MsgExportSessions      MessageType = "EXPORT_SESSIONS"
	MsgImportSessions      MessageType = "IMPORT_SESSIONS"
	MsgAddCurrentTabs      MessageType = "ADD_CURRENT_TABS"
)

// Message is the tagged request accepted by the router. Only the fields
// relevant to Type are read.
type Message struct {
	Type      MessageType     `json:"type"`
	Session   *Session        `json:"session,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	NewWindow *bool           `json:"newWindow,omitempty"`
	TabTitles []string        `json:"tabTitles,omitempty"`
	Settings  *SettingsPatch  `json:"settings,omitempty"`
	Query     string          `json:"query,omitempty"`
	Document  *ExportDocument `json:"document,omitempty"`
}

// Response is the uniform envelope returned for every message.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK wraps data in a successful response.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Fail builds a failed response carrying msg.
func Fail(msg string) Response {
	return Response{Success: false, Error: msg}
}

// RestoreResult is the data of a successful RESTORE_SESSION.
type RestoreResult struct {
	TabCount int `json:"tabCount"`
}

// ImportResult is the data of a successful IMPORT_SESSIONS.
type ImportResult struct {
	Imported int `json:"imported"`
}

// ExportDocument is the portable form of the session collection.
type ExportDocument struct {
	Version    int       `json:"version" yaml:"version"`
	ExportedAt string    `json:"exportedAt" yaml:"exportedAt"`
	Sessions   []Session `json:"sessions" yaml:"sessions"`
}

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	Status       string       `json:"status"`
	DB           ServiceCheck `json:"db"`
	Ollama       ServiceCheck `json:"ollama"`
	Claude       ServiceCheck `json:"claude"`
	SessionCount int          `json:"sessionCount"`
}

// ServiceCheck reports the state of one dependency.
type ServiceCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
