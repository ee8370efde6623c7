// internal/control/types.go
package control

// RPCRequest is a caller-facing operation invocation from the UI shell.
type RPCRequest struct {
	ID     string        `json:"id"`     // correlation id echoed in the response
	Method string        `json:"method"` // bound method name, e.g. "StartRecording"
	Params []interface{} `json:"params"`
}

// RPCResponse answers one RPCRequest.
type RPCResponse struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Event is an engine-initiated push (recorder state, replay progress, ...).
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Message is the wire envelope for the control channel.
type Message struct {
	// Kind is "rpc_request", "rpc_response" or "event".
	Kind     string       `json:"kind"`
	Request  *RPCRequest  `json:"request,omitempty"`
	Response *RPCResponse `json:"response,omitempty"`
	Event    *Event       `json:"event,omitempty"`
}
