package handlers

import (
	"github.com/monocle-dev/taskdeck/internal/services"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// CookieConfig controls the session cookie set on login.
type CookieConfig struct {
	Domain string
	Secure bool
}

type Deps struct {
	Logger    zerolog.Logger
	DB        *gorm.DB
	Identity  *services.IdentityService
	Projects  *services.ProjectService
	Tasks     *services.TaskService
	Dashboard *services.DashboardService
	Cookie    CookieConfig
}

type Handler struct {
	logger    zerolog.Logger
	db        *gorm.DB
	identity  *services.IdentityService
	projects  *services.ProjectService
	tasks     *services.TaskService
	dashboard *services.DashboardService
	cookie    CookieConfig
}

func New(deps Deps) *Handler {
	return &Handler{
		logger:    deps.Logger.With().Str("component", "http").Logger(),
		db:        deps.DB,
		identity:  deps.Identity,
		projects:  deps.Projects,
		tasks:     deps.Tasks,
		dashboard: deps.Dashboard,
		cookie:    deps.Cookie,
	}
}
