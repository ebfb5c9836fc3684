package http

import (
	"github.com/aretw0/machine/pkg/domain"
)

// ExecRequest is the body of POST /machines/{identity}.
type ExecRequest struct {
	Argins map[string]any `json:"argins,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// ExecResponse reports the outcome of one execution.
type ExecResponse struct {
	ExecutionID string `json:"execution_id"`
	Exit        string `json:"exit,omitempty"`
	Result      any    `json:"result,omitempty"`
	Error       string `json:"error,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Code        string `json:"code,omitempty"`
}

// MachineInfo describes a registered machine.
type MachineInfo struct {
	Identity     string   `json:"identity"`
	FriendlyName string   `json:"friendly_name,omitempty"`
	Description  string   `json:"description,omitempty"`
	Exits        []string `json:"exits"`
	Sync         bool     `json:"sync"`
	TimeoutMS    int64    `json:"timeout_ms,omitempty"`
}

func describe(def domain.Definition) MachineInfo {
	info := MachineInfo{
		Identity:     def.Identity,
		FriendlyName: def.FriendlyName,
		Description:  def.Description,
		Exits:        []string{domain.ExitSuccess, domain.ExitError},
		Sync:         def.Sync,
		TimeoutMS:    def.Timeout.Milliseconds(),
	}
	info.Exits = append(info.Exits, def.CustomExits()...)
	return info
}
