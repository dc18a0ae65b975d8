// @title Saati API
// @description API for work-hours tracking app "Saati"
// @BasePath /api/v1
// @schemes http
package main

import (
	"log"

	"github.com/saati/saati/internal/api"
	"github.com/saati/saati/internal/repository"
	"github.com/saati/saati/internal/scheduler"
	"github.com/saati/saati/internal/service"
	"github.com/saati/saati/pkg/cleanup"
	"github.com/saati/saati/pkg/config"
	jwtservice "github.com/saati/saati/pkg/jwt_service"
)

func init() {
	service.InitValidator()
}

func main() {
	cfg := config.New()

	// Registered before the stores so pending reminders are cancelled
	// before any backend handle closes.
	notifications := api.NewNotificationHub()
	reminders := scheduler.New(notifications)
	cleanup.Register(&cleanup.Job{Name: "Reminder scheduler", F: reminders.Stop})
	defer cleanup.CleanUp()

	// The remote backend is optional: without Postgres configuration the
	// server still serves guest sessions from the local store, and account
	// endpoints report the missing configuration.
	var remote repository.UserDataStore
	var usersRepo repository.UsersRepositoryI
	if addr := cfg.GetString("POSTGRES_DB_ADDRESS"); addr != "" {
		dbCfg := repository.PGCfg{
			Address:  addr,
			Username: cfg.GetString("POSTGRES_USER"),
			Password: cfg.GetString("POSTGRES_PASSWORD"),
			DB:       cfg.GetString("POSTGRES_DB"),
		}
		remote = repository.NewRemoteStore(&dbCfg)
		usersRepo = repository.NewUsersRepo(&dbCfg)
	} else {
		log.Println("POSTGRES_DB_ADDRESS is not set, accounts disabled")
	}

	local := repository.NewLocalStore(cfg.GetStringDefault("LOCAL_DB_PATH", "./saati.db"))
	store := repository.NewAdapter(remote, local)

	serv := api.New(&api.ServicesList{
		UserService:    service.NewUserService(usersRepo),
		LogsService:    service.NewLogsService(store),
		TasksService:   service.NewTasksService(store, reminders),
		ProfileService: service.NewProfileService(store),
		ReportService:  service.NewReportService(store),
		TrackerService: service.NewTrackerService(store, local),
		JwtService:     jwtservice.New(cfg.GetString("JWT_SECRET")),
		Scheduler:      reminders,
		Store:          store,
		Notifications:  notifications,
	})
	err := serv.Run(cfg.GetString("API_ADDRESS"))
	if err != nil {
		log.Println("Server error: " + err.Error())
	}
}
