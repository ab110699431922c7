package models

type Backup struct {
	ID        string `json:"id"`
	ServerID  string `json:"serverId"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"createdAt"`
}

func (b Backup) EntityID() string { return b.ID }
