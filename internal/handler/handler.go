package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/maxviazov/tracker-dashboard/internal/service"
	"github.com/maxviazov/tracker-dashboard/pkg/auth"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Pinger   Pinger
	Signer   *auth.Signer
	Trackers service.TrackerService
	Users    service.UserService
	Logger   zerolog.Logger
}

// Register mounts all public routes on the given engine.
// Everything under /api requires a session; login and the probes do not.
// Request bodies keep numbers as json.Number so row ids travel unchanged.
func Register(r *gin.Engine, d Deps) {
	binding.EnableDecoderUseNumber = true
	log := d.Logger.With().Str("module", "handler").Logger()
	r.Use(RequestLogger(log))

	h := NewHealthHandler(d.Pinger)
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	a := NewAuthHandler(d.Users, d.Signer, log)
	r.POST(LoginPath, a.login)
	r.POST(LogoutPath, a.logout)

	api := r.Group(APIPrefix)
	api.Use(SessionRequired(d.Signer))
	{
		NewTrackerHandler(d.Trackers).Register(api)
		NewUserHandler(d.Users).Register(api)
	}
}

func missingParam(name string) error {
	return service.InvalidField(name, "Missing parameter - "+name)
}
