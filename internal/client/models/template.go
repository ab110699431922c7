package models

type ServerType string

const (
	ServerTypeVanilla ServerType = "Vanilla"
	ServerTypeForge   ServerType = "Forge"
	ServerTypeFabric  ServerType = "Fabric"
	ServerTypePaper   ServerType = "Paper"
)

// Template describes how new servers are provisioned.
type Template struct {
	ID               string            `json:"id,omitempty"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	MinecraftVersion string            `json:"minecraftVersion"`
	JavaVersion      string            `json:"javaVersion"`
	ServerType       ServerType        `json:"serverType"`
	ModpackType      string            `json:"modpackType,omitempty"`
	ModpackURL       string            `json:"modpackURL,omitempty"`
	MinMemoryMB      int               `json:"minMemoryMB"`
	MaxMemoryMB      int               `json:"maxMemoryMB"`
	Tags             []string          `json:"tags"`
	JVMArgs          []string          `json:"jvmArgs,omitempty"`
	Properties       map[string]string `json:"properties,omitempty"`
}

func (t Template) EntityID() string { return t.ID }
