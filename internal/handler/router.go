package handler

import (
	"net/http"

	"cinema-reservation/internal/handler/api"
	"cinema-reservation/internal/handler/middleware"
	"cinema-reservation/internal/infra/metrics"
	"cinema-reservation/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type RouterParams struct {
	fx.In

	Engine             *gin.Engine
	Config             config.Config
	Logger             *middleware.Logger
	Metrics            *metrics.Metrics
	Debouncer          *middleware.Debouncer
	ReservationHandler *api.ReservationHandler
	SaleHandler        *api.SaleHandler
	ShowingHandler     *api.ShowingHandler
}

func NewRouter(p RouterParams) {
	setupMiddleware(p.Engine, p.Config, p.Logger, p.Metrics)
	setupRoutes(p)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, m *metrics.Metrics) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.Metrics(m))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(p RouterParams) {
	p.Engine.GET("/health", healthCheck)
	p.Engine.GET("/metrics", gin.WrapH(p.Metrics.Handler()))

	debounce := p.Debouncer.Middleware()

	apiGroup := p.Engine.Group("/api")
	{
		reservations := apiGroup.Group("/reservations")
		addRoutes(reservations, []route{
			{Method: http.MethodPost, Path: "", Handler: p.ReservationHandler.Create, Mw: []gin.HandlerFunc{debounce}},
			{Method: http.MethodGet, Path: "/:id", Handler: p.ReservationHandler.Get},
			{Method: http.MethodDelete, Path: "/:id", Handler: p.ReservationHandler.Cancel, Mw: []gin.HandlerFunc{debounce}},
			{Method: http.MethodPost, Path: "/:id/confirm", Handler: p.ReservationHandler.Confirm, Mw: []gin.HandlerFunc{debounce}},
		})

		sales := apiGroup.Group("/sales")
		addRoutes(sales, []route{
			{Method: http.MethodGet, Path: "", Handler: p.SaleHandler.List},
			{Method: http.MethodGet, Path: "/:id", Handler: p.SaleHandler.Get},
		})

		showings := apiGroup.Group("/showings")
		addRoutes(showings, []route{
			{Method: http.MethodGet, Path: "/:id/seats", Handler: p.ShowingHandler.Seats},
		})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
