package models

import (
	"fmt"

	"github.com/dmitrijs2005/mcpanel/internal/common"
)

type ServerStatus string

const (
	ServerOnline   ServerStatus = "online"
	ServerOffline  ServerStatus = "offline"
	ServerStarting ServerStatus = "starting"
	ServerStopping ServerStatus = "stopping"
)

type Modpack struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Players struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

type Resources struct {
	CPU     float64 `json:"cpu"`
	RAM     float64 `json:"ram"`
	Storage float64 `json:"storage"`
}

// Server is a hosted game-server instance.
type Server struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Status           ServerStatus   `json:"status"`
	MinecraftVersion string         `json:"minecraftVersion"`
	Modpack          *Modpack       `json:"modpack,omitempty"`
	JavaVersion      string         `json:"javaVersion"`
	Players          Players        `json:"players"`
	Resources        Resources      `json:"resources"`
	IPAddress        string         `json:"ipAddress"`
	Port             int            `json:"port"`
	Settings         map[string]any `json:"settings,omitempty"`
}

func (s Server) EntityID() string { return s.ID }

// ServerAction is a lifecycle command accepted by POST /servers/{id}/action.
type ServerAction string

const (
	ActionStart   ServerAction = "start"
	ActionStop    ServerAction = "stop"
	ActionRestart ServerAction = "restart"
)

// Validate rejects actions the backend would not understand.
func (a ServerAction) Validate() error {
	switch a {
	case ActionStart, ActionStop, ActionRestart:
		return nil
	default:
		return fmt.Errorf("%w: unknown server action %q", common.ErrorInvalidArgument, string(a))
	}
}

// NewServerRequest is the body of POST /servers.
type NewServerRequest struct {
	Name       string `json:"name"`
	TemplateID string `json:"templateId"`
}

// PlayerCommand is the body of POST /servers/{id}/players/manage.
type PlayerCommand struct {
	Action string `json:"action"`
	Player string `json:"player"`
	Reason string `json:"reason"`
}

// FileUpdate is the body of POST /servers/{id}/files/update.
type FileUpdate struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}
