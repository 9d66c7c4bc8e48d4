package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/app"
	"github.com/charlesng35/fleetcn/internal/handlers"
	"github.com/charlesng35/fleetcn/internal/middleware"
	"github.com/charlesng35/fleetcn/internal/realtime"
	"github.com/charlesng35/fleetcn/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers every route.
// hub may be nil, in which case notifications are stored but not pushed and the
// stream endpoint is not mounted. rateStore may be nil to use an in-memory store.
func NewRouter(db *gorm.DB, verifier middleware.TokenVerifier, cfg *app.Config, hub *realtime.Hub, rateStore middleware.RateStore) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if verifier == nil {
		return nil, fmt.Errorf("token verifier must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if rateStore == nil {
		rateStore = middleware.NewMemoryRateStore()
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins...))

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health(db))
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	svc, err := newServiceSet(db, hub)
	if err != nil {
		return nil, err
	}
	checker := svc.permissions.Checker()
	pc := cfg.Pagination.Normalised()
	paging := handlers.Paging{DefaultPerPage: pc.DefaultPerPage, MaxPerPage: pc.MaxPerPage}

	api := r.Group("/api")
	api.Use(middleware.Auth(verifier))
	if limit := cfg.Server.RateLimit; limit.Requests > 0 && limit.Window > 0 {
		api.Use(middleware.RateLimit(rateStore, limit.Requests, limit.Window))
	}

	api.GET("/pages", handlers.PageWindow)

	registerVehicleRoutes(api, handlers.NewVehicleHandler(svc.vehicles, paging), checker)
	registerEmployeeRoutes(api, handlers.NewEmployeeHandler(svc.employees, paging), checker)
	registerServiceRecordRoutes(api, handlers.NewServiceRecordHandler(svc.records, paging), checker)
	registerCertificateRoutes(api, handlers.NewCertificateHandler(svc.certificates, paging), checker)
	registerLicenseRoutes(api, handlers.NewLicenseHandler(svc.licenses, paging), checker)
	registerUserRoutes(api, handlers.NewUserHandler(svc.users, paging), checker)
	registerPermissionRoutes(api, handlers.NewPermissionHandler(svc.permissions, paging), checker)
	registerAuditRoutes(api, handlers.NewAuditHandler(svc.audit, paging), checker)

	if cfg.Notifications.Enabled {
		registerNotificationRoutes(api, handlers.NewNotificationHandler(svc.notifications, hub, svc.permissions, paging), checker, hub != nil)
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

type serviceSet struct {
	audit         *services.AuditService
	permissions   *services.PermissionService
	users         *services.UserService
	vehicles      *services.VehicleService
	employees     *services.EmployeeService
	records       *services.ServiceRecordService
	certificates  *services.CertificateService
	licenses      *services.LicenseService
	notifications *services.NotificationService
}

func newServiceSet(db *gorm.DB, hub *realtime.Hub) (*serviceSet, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	set := &serviceSet{audit: audit}

	if set.permissions, err = services.NewPermissionService(db, audit); err != nil {
		return nil, err
	}
	if set.users, err = services.NewUserService(db, audit); err != nil {
		return nil, err
	}
	if set.vehicles, err = services.NewVehicleService(db, audit); err != nil {
		return nil, err
	}
	if set.employees, err = services.NewEmployeeService(db, audit); err != nil {
		return nil, err
	}
	if set.records, err = services.NewServiceRecordService(db, audit); err != nil {
		return nil, err
	}
	if set.certificates, err = services.NewCertificateService(db, audit); err != nil {
		return nil, err
	}
	if set.licenses, err = services.NewLicenseService(db, audit); err != nil {
		return nil, err
	}
	if set.notifications, err = services.NewNotificationService(db, hub); err != nil {
		return nil, err
	}
	return set, nil
}
