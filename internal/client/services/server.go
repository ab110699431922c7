package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/mcpanel/internal/client/client"
	"github.com/dmitrijs2005/mcpanel/internal/client/models"
	"github.com/dmitrijs2005/mcpanel/internal/client/store"
	"github.com/dmitrijs2005/mcpanel/internal/common"
	"github.com/dmitrijs2005/mcpanel/internal/logging"
)

// UploadRequest creates a server from an uploaded modpack archive.
type UploadRequest struct {
	Name        string
	JavaVersion string
	MaxMemoryMB int
	Filename    string
	File        io.Reader
}

// ServerService keeps the server store in line with the backend.
//
// Server updates are merged in place (never re-fetched) so an open detail
// view keeps observing the same entity.
type ServerService interface {
	Store() *store.Store[models.Server]

	FetchServers(ctx context.Context)
	FetchServerByID(ctx context.Context, id string) *models.Server
	FetchSettings(ctx context.Context, id string)

	CreateServer(ctx context.Context, name, templateID string) (*models.Server, error)
	CreateServerFromUpload(ctx context.Context, req UploadRequest) (*models.Server, error)
	PerformAction(ctx context.Context, id string, action models.ServerAction) error
	KickPlayer(ctx context.Context, id, player, reason string) error
	DeleteServer(ctx context.Context, id string) error
	SaveSettings(ctx context.Context, id string, settings map[string]any) error

	FetchFileContent(ctx context.Context, id, path string) (string, error)
	FileContent() (string, bool)
	UpdateFileContent(ctx context.Context, id, path, content string) error

	// ApplyBroadcast merges a pushed partial server into every slot holding
	// id. Unknown ids are dropped.
	ApplyBroadcast(id string, payload []byte) (bool, error)
}

type serverService struct {
	api   API
	store *store.Store[models.Server]
	log   logging.Logger

	fileMu      sync.RWMutex
	fileContent *string
}

func NewServerService(api API, log logging.Logger) ServerService {
	return &serverService{
		api:   api,
		store: store.New[models.Server]("servers"),
		log:   orDiscard(log).With("component", "servers"),
	}
}

func (s *serverService) Store() *store.Store[models.Server] { return s.store }

func (s *serverService) FetchServers(ctx context.Context) {
	done := s.store.Track(store.FlagList)
	defer done()

	var list []models.Server
	if err := s.api.JSON(ctx, http.MethodGet, "/servers", nil, &list); err != nil {
		s.log.Warn(ctx, "server list fetch failed", "error", err)
		return
	}
	s.store.ReplaceAll("", list)
}

func (s *serverService) FetchServerByID(ctx context.Context, id string) *models.Server {
	done := s.store.Track(store.FlagCurrent)
	defer done()

	var srv *models.Server
	if err := s.api.JSON(ctx, http.MethodGet, "/servers/"+seg(id), nil, &srv); err != nil || srv == nil {
		if err != nil && !errors.Is(err, client.ErrNotFound) {
			s.log.Warn(ctx, "server fetch failed", "id", id, "error", err)
		}
		s.store.ClearCurrent()
		return nil
	}
	s.store.SetCurrent(srv)
	return s.store.Current()
}

func (s *serverService) FetchSettings(ctx context.Context, id string) {
	if s.store.Current() == nil {
		return
	}
	done := s.store.Track(store.FlagSettings)
	defer done()

	var settings map[string]any
	if err := s.api.JSON(ctx, http.MethodGet, "/servers/"+seg(id)+"/settings", nil, &settings); err != nil {
		s.log.Warn(ctx, "settings fetch failed", "id", id, "error", err)
		return
	}
	if settings == nil {
		return
	}
	normalized := normalizeSettings(settings)
	s.store.Update(id, func(srv *models.Server) {
		srv.Settings = normalized
	})
}

func (s *serverService) CreateServer(ctx context.Context, name, templateID string) (*models.Server, error) {
	if name == "" || templateID == "" {
		return nil, fmt.Errorf("create server: %w: name and template are required", common.ErrorInvalidArgument)
	}

	var srv models.Server
	body := models.NewServerRequest{Name: name, TemplateID: templateID}
	if err := s.api.JSON(ctx, http.MethodPost, "/servers", body, &srv); err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}
	return s.appendCreated(srv)
}

func (s *serverService) CreateServerFromUpload(ctx context.Context, req UploadRequest) (*models.Server, error) {
	if req.Name == "" || req.File == nil {
		return nil, fmt.Errorf("upload server: %w: name and file are required", common.ErrorInvalidArgument)
	}
	filename := req.Filename
	if filename == "" {
		filename = "modpack.zip"
	}

	fields := map[string]string{
		"name":        req.Name,
		"javaVersion": req.JavaVersion,
		"maxMemoryMB": strconv.Itoa(req.MaxMemoryMB),
	}
	file := &client.FilePart{Field: "file", Filename: filename, Content: req.File}

	var srv models.Server
	if err := s.api.Multipart(ctx, "/servers/upload", fields, file, &srv); err != nil {
		return nil, fmt.Errorf("upload server: %w", err)
	}
	return s.appendCreated(srv)
}

func (s *serverService) appendCreated(srv models.Server) (*models.Server, error) {
	if srv.ID == "" {
		return nil, fmt.Errorf("create server: %w: response has no id", client.ErrMalformedResponse)
	}
	s.store.Append(srv)
	return &srv, nil
}

func (s *serverService) PerformAction(ctx context.Context, id string, action models.ServerAction) error {
	if err := action.Validate(); err != nil {
		return err
	}
	body := map[string]string{"action": string(action)}
	if err := s.api.JSON(ctx, http.MethodPost, "/servers/"+seg(id)+"/action", body, nil); err != nil {
		return fmt.Errorf("server %s %s: %w", id, action, err)
	}
	return nil
}

func (s *serverService) KickPlayer(ctx context.Context, id, player, reason string) error {
	if player == "" {
		return fmt.Errorf("kick: %w: player is required", common.ErrorInvalidArgument)
	}
	body := models.PlayerCommand{Action: "kick", Player: player, Reason: reason}
	if err := s.api.JSON(ctx, http.MethodPost, "/servers/"+seg(id)+"/players/manage", body, nil); err != nil {
		return fmt.Errorf("kick %s: %w", player, err)
	}
	return nil
}

func (s *serverService) DeleteServer(ctx context.Context, id string) error {
	if err := s.api.JSON(ctx, http.MethodDelete, "/servers/"+seg(id), nil, nil); err != nil {
		return fmt.Errorf("delete server %s: %w", id, err)
	}
	s.store.Remove(id)
	return nil
}

func (s *serverService) SaveSettings(ctx context.Context, id string, settings map[string]any) error {
	if err := s.api.JSON(ctx, http.MethodPost, "/servers/"+seg(id)+"/settings", settings, nil); err != nil {
		return fmt.Errorf("save settings %s: %w", id, err)
	}

	saved := normalizeSettings(settings)
	s.store.Update(id, func(srv *models.Server) {
		if srv.Settings == nil {
			srv.Settings = make(map[string]any, len(saved))
		}
		for k, v := range saved {
			srv.Settings[k] = v
		}
	})
	return nil
}

func (s *serverService) FetchFileContent(ctx context.Context, id, path string) (string, error) {
	done := s.store.Track(store.FlagFileContent)
	defer done()

	s.setFileContent(nil)
	text, err := s.api.Text(ctx, "/servers/"+seg(id)+"/files/content", url.Values{"path": {path}})
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	s.setFileContent(&text)
	return text, nil
}

func (s *serverService) setFileContent(v *string) {
	s.fileMu.Lock()
	s.fileContent = v
	s.fileMu.Unlock()
}

func (s *serverService) FileContent() (string, bool) {
	s.fileMu.RLock()
	defer s.fileMu.RUnlock()
	if s.fileContent == nil {
		return "", false
	}
	return *s.fileContent, true
}

func (s *serverService) UpdateFileContent(ctx context.Context, id, path, content string) error {
	body := models.FileUpdate{Path: path, Content: content}
	if err := s.api.JSON(ctx, http.MethodPost, "/servers/"+seg(id)+"/files/update", body, nil); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (s *serverService) ApplyBroadcast(id string, payload []byte) (bool, error) {
	return s.store.Merge(id, payload)
}
