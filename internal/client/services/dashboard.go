package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/mcpanel/internal/client/models"
	"github.com/dmitrijs2005/mcpanel/internal/client/store"
	"github.com/dmitrijs2005/mcpanel/internal/logging"
	"golang.org/x/sync/errgroup"
)

// RecentEventsLimit is how many events the dashboard shows.
const RecentEventsLimit = 5

// DashboardService loads the dashboard aggregate (kept as the stats store's
// current entity) and the recent events list.
type DashboardService interface {
	Stats() *store.Store[models.DashboardStats]
	Events() *store.Store[models.Event]

	// FetchDashboardData loads both parts concurrently. Each part is applied
	// only if its own request succeeded; the returned error joins the
	// failures of both.
	FetchDashboardData(ctx context.Context) error
}

type dashboardService struct {
	api    API
	stats  *store.Store[models.DashboardStats]
	events *store.Store[models.Event]
	log    logging.Logger
}

func NewDashboardService(api API, log logging.Logger) DashboardService {
	return &dashboardService{
		api:    api,
		stats:  store.New[models.DashboardStats]("dashboard"),
		events: store.New[models.Event]("events"),
		log:    orDiscard(log).With("component", "dashboard"),
	}
}

func (d *dashboardService) Stats() *store.Store[models.DashboardStats] { return d.stats }
func (d *dashboardService) Events() *store.Store[models.Event]         { return d.events }

func (d *dashboardService) FetchDashboardData(ctx context.Context) error {
	doneStats := d.stats.Track(store.FlagCurrent)
	doneEvents := d.events.Track(store.FlagList)
	defer doneStats()
	defer doneEvents()

	var (
		g                   errgroup.Group
		statsErr, eventsErr error
	)

	g.Go(func() error {
		var stats *models.DashboardStats
		if err := d.api.JSON(ctx, http.MethodGet, "/dashboard/stats", nil, &stats); err != nil {
			statsErr = fmt.Errorf("dashboard stats: %w", err)
			return statsErr
		}
		if stats != nil {
			d.stats.SetCurrent(stats)
		}
		return nil
	})

	g.Go(func() error {
		var events []models.Event
		path := "/events?limit=" + strconv.Itoa(RecentEventsLimit)
		if err := d.api.JSON(ctx, http.MethodGet, path, nil, &events); err != nil {
			eventsErr = fmt.Errorf("recent events: %w", err)
			return eventsErr
		}
		d.events.ReplaceAll("", events)
		return nil
	})

	// Wait reports only the first failure; both parts always run to the end.
	if g.Wait() == nil {
		return nil
	}
	err := errors.Join(statsErr, eventsErr)
	d.log.Warn(ctx, "dashboard refresh incomplete", "error", err)
	return err
}
