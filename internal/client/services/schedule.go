package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/mcpanel/internal/client/models"
	"github.com/dmitrijs2005/mcpanel/internal/client/store"
	"github.com/dmitrijs2005/mcpanel/internal/common"
	"github.com/dmitrijs2005/mcpanel/internal/logging"
)

// ScheduleService manages the schedules of one server at a time. Saving
// re-fetches the list because next/last run times are computed by the
// backend.
type ScheduleService interface {
	Store() *store.Store[models.Schedule]

	FetchSchedules(ctx context.Context, serverID string)
	// SaveSchedule creates s when it has no id and updates it otherwise.
	SaveSchedule(ctx context.Context, s models.Schedule) error
	DeleteSchedule(ctx context.Context, serverID, scheduleID string) error
}

type scheduleService struct {
	api   API
	store *store.Store[models.Schedule]
	log   logging.Logger
}

func NewScheduleService(api API, log logging.Logger) ScheduleService {
	return &scheduleService{
		api:   api,
		store: store.New[models.Schedule]("schedules"),
		log:   orDiscard(log).With("component", "schedules"),
	}
}

func (s *scheduleService) Store() *store.Store[models.Schedule] { return s.store }

func schedulesPath(serverID string) string {
	return "/servers/" + seg(serverID) + "/schedules"
}

func (s *scheduleService) FetchSchedules(ctx context.Context, serverID string) {
	done := s.store.Track(store.FlagList)
	defer done()

	var list []models.Schedule
	if err := s.api.JSON(ctx, http.MethodGet, schedulesPath(serverID), nil, &list); err != nil {
		s.log.Warn(ctx, "schedule list fetch failed", "server", serverID, "error", err)
		return
	}
	s.store.ReplaceAll(serverID, list)
}

func (s *scheduleService) SaveSchedule(ctx context.Context, sc models.Schedule) error {
	if sc.ServerID == "" {
		return fmt.Errorf("save schedule: %w: server id is required", common.ErrorInvalidArgument)
	}

	method, path := http.MethodPost, schedulesPath(sc.ServerID)
	if sc.ID != "" {
		method, path = http.MethodPut, path+"/"+seg(sc.ID)
	}
	if err := s.api.JSON(ctx, method, path, sc, nil); err != nil {
		return fmt.Errorf("save schedule %q: %w", sc.Name, err)
	}

	s.FetchSchedules(ctx, sc.ServerID)
	return nil
}

func (s *scheduleService) DeleteSchedule(ctx context.Context, serverID, scheduleID string) error {
	if err := s.api.JSON(ctx, http.MethodDelete, schedulesPath(serverID)+"/"+seg(scheduleID), nil, nil); err != nil {
		return fmt.Errorf("delete schedule %s: %w", scheduleID, err)
	}
	s.store.Remove(scheduleID)
	return nil
}
