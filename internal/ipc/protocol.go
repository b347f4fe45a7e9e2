// Package ipc provides the unix-socket control channel for a running listener.
package ipc

type Request struct {
	Command string `json:"command"`
}

type Response struct {
	OK         bool   `json:"ok"`
	State      string `json:"state,omitempty"`
	Muted      bool   `json:"muted,omitempty"`
	Utterances int    `json:"utterances,omitempty"`
	Bytes      int64  `json:"bytes,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}
