// ABOUTME: Vision Assistant protocol message definitions
// ABOUTME: Flat JSON envelope discriminated by a type tag
package protocol

// Inbound message types.
const (
	TypeRoleConfirmed      = "role_confirmed"
	TypeRoleError          = "role_error"
	TypeFrame              = "frame-to-show-frontend"
	TypeAI                 = "ai"
	TypeUser               = "user"
	TypeAudio              = "audio_from_gemini"
	TypeBroadcasterChanged = "broadcaster_changed"
	TypeStatus             = "status"
	TypeError              = "error"
)

// Inbound is the envelope for all server messages. The protocol keeps
// every payload field at the top level next to the type tag, so one
// struct covers the whole table.
type Inbound struct {
	Type string `json:"type"`

	// role_confirmed
	Role string `json:"role,omitempty"`

	// role_error
	Message string `json:"message,omitempty"`

	// frame-to-show-frontend (base64 JPEG), ai/user (text),
	// audio_from_gemini (base64 PCM), error (text)
	Data string `json:"data,omitempty"`

	// audio_from_gemini
	Format     string `json:"format,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`

	// broadcaster_changed / status
	BroadcasterID string `json:"broadcaster_id,omitempty"`

	// status
	ClientID     string `json:"client_id,omitempty"`
	IsReceiver   bool   `json:"is_receiver,omitempty"`
	TotalClients int    `json:"total_clients,omitempty"`
}

// SetRole requests a session role after connect.
type SetRole struct {
	Type string `json:"type"`
	Role string `json:"role"`
}

// NewSetRole builds the receiver role request.
func NewSetRole(role string) SetRole {
	return SetRole{Type: "set_role", Role: role}
}

// GetStatus asks the server for a status broadcast.
type GetStatus struct {
	Type string `json:"type"`
}

// NewGetStatus builds a status request.
func NewGetStatus() GetStatus {
	return GetStatus{Type: "get_status"}
}

// Disconnect is the best-effort notice sent before closing.
type Disconnect struct {
	Type string `json:"type"`
}

// NewDisconnect builds the disconnect notice.
func NewDisconnect() Disconnect {
	return Disconnect{Type: "disconnect"}
}
