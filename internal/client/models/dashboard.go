package models

// DashboardStatsID is the fixed identifier of the dashboard aggregate.
const DashboardStatsID = "dashboard"

type ResourceDataPoint struct {
	Timestamp      string  `json:"timestamp"`
	CPUUsage       float64 `json:"cpuUsage"`
	RAMUsage       float64 `json:"ramUsage"`
	PlayersCurrent int     `json:"playersCurrent"`
}

// DashboardStats is the aggregate behind the dashboard. The history slices
// are time ordered.
type DashboardStats struct {
	TotalServers     int                 `json:"totalServers"`
	OnlineServers    int                 `json:"onlineServers"`
	TotalPlayers     int                 `json:"totalPlayers"`
	MaxPlayers       int                 `json:"maxPlayers"`
	SystemHealth     float64             `json:"systemHealth"`
	ServerStatusDist map[string]int      `json:"serverStatusDist"`
	PlayerHistory    []ResourceDataPoint `json:"playerHistory"`
	ResourceHistory  []ResourceDataPoint `json:"resourceHistory"`
}

func (DashboardStats) EntityID() string { return DashboardStatsID }

// Event is an entry of the backend's activity feed.
type Event struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	ServerID  string `json:"serverId,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func (e Event) EntityID() string { return e.ID }
