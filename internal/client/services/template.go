package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/mcpanel/internal/client/models"
	"github.com/dmitrijs2005/mcpanel/internal/client/store"
	"github.com/dmitrijs2005/mcpanel/internal/logging"
)

// TemplateService manages server templates. Like schedules, a save is
// followed by a full re-fetch.
type TemplateService interface {
	Store() *store.Store[models.Template]

	FetchTemplates(ctx context.Context)
	SaveTemplate(ctx context.Context, t models.Template) error
	DeleteTemplate(ctx context.Context, id string) error
}

type templateService struct {
	api   API
	store *store.Store[models.Template]
	log   logging.Logger
}

func NewTemplateService(api API, log logging.Logger) TemplateService {
	return &templateService{
		api:   api,
		store: store.New[models.Template]("templates"),
		log:   orDiscard(log).With("component", "templates"),
	}
}

func (s *templateService) Store() *store.Store[models.Template] { return s.store }

func (s *templateService) FetchTemplates(ctx context.Context) {
	done := s.store.Track(store.FlagList)
	defer done()

	var list []models.Template
	if err := s.api.JSON(ctx, http.MethodGet, "/templates", nil, &list); err != nil {
		s.log.Warn(ctx, "template list fetch failed", "error", err)
		return
	}
	s.store.ReplaceAll("", list)
}

func (s *templateService) SaveTemplate(ctx context.Context, t models.Template) error {
	method, path := http.MethodPost, "/templates"
	if t.ID != "" {
		method, path = http.MethodPut, "/templates/"+seg(t.ID)
	}
	if err := s.api.JSON(ctx, method, path, t, nil); err != nil {
		return fmt.Errorf("save template %q: %w", t.Name, err)
	}

	s.FetchTemplates(ctx)
	return nil
}

func (s *templateService) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.api.JSON(ctx, http.MethodDelete, "/templates/"+seg(id), nil, nil); err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	s.store.Remove(id)
	return nil
}
