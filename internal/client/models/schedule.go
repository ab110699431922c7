package models

// Schedule is a cron-driven task on a server. LastRunAt and NextRunAt are
// computed by the backend.
type Schedule struct {
	ID             string         `json:"id,omitempty"`
	ServerID       string         `json:"serverId"`
	Name           string         `json:"name"`
	CronExpression string         `json:"cronExpression"`
	TaskType       string         `json:"taskType"`
	Payload        map[string]any `json:"payload"`
	IsActive       bool           `json:"isActive"`
	LastRunAt      string         `json:"lastRunAt,omitempty"`
	NextRunAt      string         `json:"nextRunAt,omitempty"`
}

func (s Schedule) EntityID() string { return s.ID }
