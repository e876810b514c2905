// Package app assembles the store, the services and the optional
// front-ends from the configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"homeboard/internal/api"
	"homeboard/internal/bot"
	"homeboard/internal/config"
	"homeboard/internal/logger"
	"homeboard/internal/repository"
	"homeboard/internal/service"
	"homeboard/internal/store"
	"homeboard/internal/store/local"
	"homeboard/internal/store/remote"
	"homeboard/internal/weather"
)

// App is the wired application. DB is set only for the sql store.
type App struct {
	Config   config.Config
	Location *time.Location
	Local    *local.Store
	Store    store.Store
	DB       *gorm.DB

	Chores      *service.ChoreService
	Shopping    *service.ShoppingService
	Meals       *service.MealService
	Reminder    *service.ReminderService
	Weather     *weather.Service
	Subscribers *bot.Subscribers

	now func() time.Time
}

// Open selects the store once from cfg.Store and builds the services on
// top of it. The local file is always opened: it holds the weather cache,
// the theme and the bot subscribers.
func Open(cfg config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	localStore, err := local.Open(cfg.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	a := &App{Config: cfg, Location: loc, Local: localStore, now: time.Now}

	var primary store.Store
	switch cfg.Store {
	case config.StoreSQL:
		db, err := repository.NewDB(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.DB = db
		primary = store.NewResilient(repository.NewStore(db), nil)
	case config.StoreRemote:
		primary = store.NewResilient(remote.New(cfg.RemoteURL, cfg.APIKey), localStore)
	default:
		primary = store.NewResilient(localStore, nil)
	}
	a.Store = store.NewMealCache(primary)

	a.Chores = service.NewChoreService(a.Store)
	a.Shopping = service.NewShoppingService(a.Store)
	a.Meals = service.NewMealService(a.Store)
	a.Reminder = service.NewReminderService(a.Chores, a.Shopping, a.Meals)
	a.Weather = weather.NewService(weather.NewClient(), localStore, cfg.Weather)
	a.Subscribers = bot.NewSubscribers(localStore)

	logger.Info("store ready", "kind", cfg.Store, "local", localStore.Path())
	return a, nil
}

// Now is the current time in the configured zone.
func (a *App) Now() time.Time {
	return a.now().In(a.Location)
}

// Sweep runs the meal retention sweep once.
func (a *App) Sweep(ctx context.Context) (service.SweepReport, error) {
	return a.Meals.Sweep(ctx, a.Now())
}

// APIDeps exposes the services to the HTTP router.
func (a *App) APIDeps() api.Deps {
	return api.Deps{
		Store:    a.Store,
		Chores:   a.Chores,
		Shopping: a.Shopping,
		Meals:    a.Meals,
		Weather:  a.Weather,
		APIKey:   a.Config.APIKey,
		Location: a.Location,
		Now:      a.now,
	}
}

// BotDeps exposes the services to the Telegram front-end.
func (a *App) BotDeps() bot.Deps {
	return bot.Deps{
		Chores:      a.Chores,
		Shopping:    a.Shopping,
		Meals:       a.Meals,
		Reminder:    a.Reminder,
		Weather:     a.Weather,
		Subscribers: a.Subscribers,
		Location:    a.Location,
	}
}

// Schedule registers the daily sweep on s.
func (a *App) Schedule(s *service.Scheduler) error {
	id, err := s.Daily("meal sweep", a.Config.SweepAt, func(ctx context.Context) error {
		_, err := a.Sweep(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	logger.Info("sweep scheduled", "at", a.Config.SweepAt, "entry", id)
	return nil
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
