package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saati/saati/internal/repository"
	"github.com/saati/saati/internal/service"
)

type Server struct {
	mx             *chi.Mux
	userService    service.UserServiceI
	logsService    service.LogsServiceI
	tasksService   service.TasksServiceI
	profileService service.ProfileServiceI
	reportService  service.ReportServiceI
	trackerService service.TrackerServiceI
	jwtService     JWTServiceI
	scheduler      ReminderSchedulerI
	store          repository.UserDataStore
	notifications  *NotificationHub
}

type ServicesList struct {
	UserService    service.UserServiceI
	LogsService    service.LogsServiceI
	TasksService   service.TasksServiceI
	ProfileService service.ProfileServiceI
	ReportService  service.ReportServiceI
	TrackerService service.TrackerServiceI
	JwtService     JWTServiceI
	Scheduler      ReminderSchedulerI
	Store          repository.UserDataStore
	Notifications  *NotificationHub
}

func New(servicesOptions *ServicesList) *Server {
	s := &Server{
		mx:             chi.NewMux(),
		userService:    servicesOptions.UserService,
		logsService:    servicesOptions.LogsService,
		tasksService:   servicesOptions.TasksService,
		profileService: servicesOptions.ProfileService,
		reportService:  servicesOptions.ReportService,
		trackerService: servicesOptions.TrackerService,
		jwtService:     servicesOptions.JwtService,
		scheduler:      servicesOptions.Scheduler,
		store:          servicesOptions.Store,
		notifications:  servicesOptions.Notifications,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mx.Use(s.RequestIDMiddleware, s.SettingUpLoggerMiddleware)
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.Register)
		r.Post("/auth/login", s.Login)
		r.Post("/guest/session", s.CreateGuestSession)

		r.Group(func(pr chi.Router) {
			pr.Use(s.IdentityMiddleware, s.LoggerExtensionMiddleware)

			pr.Delete("/auth/account", s.DeleteAccount)

			pr.Get("/logs", s.GetLogs)
			pr.Post("/logs", s.SaveLog)
			pr.Put("/logs", s.SaveLog)
			pr.Delete("/logs/{id}", s.DeleteLog)

			pr.Get("/tasks", s.GetTasks)
			pr.Post("/tasks", s.SaveTask)
			pr.Put("/tasks", s.SaveTask)
			pr.Delete("/tasks/{id}", s.DeleteTask)

			pr.Get("/profile", s.GetProfile)
			pr.Put("/profile", s.SaveProfile)

			pr.Get("/reports", s.GetReport)
			pr.Get("/reports/export", s.ExportReport)

			pr.Post("/shift/start", s.StartShift)
			pr.Post("/shift/stop", s.StopShift)
			pr.Get("/shift", s.ShiftStatus)

			pr.Get("/notifications/permission", s.GetNotificationPermission)
			pr.Put("/notifications/permission", s.SetNotificationPermission)
			pr.Get("/notifications/stream", s.NotificationStream)

			pr.Get("/watch", s.Watch)
		})
	})
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.mx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.mx
}
