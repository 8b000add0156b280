package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/vpndash/internal/config"
	"github.com/polkiloo/vpndash/internal/server/http/handlers"
	"github.com/polkiloo/vpndash/internal/server/http/middleware"
	"github.com/polkiloo/vpndash/internal/server/http/pages"
	"github.com/polkiloo/vpndash/internal/server/http/ws"
)

const maxRequestBody = 1 << 20

// Params lists router dependencies.
type Params struct {
	fx.In

	Facade  handlers.DashboardFacade
	Stream  *ws.StatusStream
	Cookies middleware.SessionCookies
	Config  *config.Config
	Logger  *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.CORS(p.Config.AllowedOrigins))
	engine.Use(middleware.DecompressRequest(maxRequestBody))
	// Upgraded websocket connections must not be wrapped by the gzip writer.
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`^/api/purchases/[^/]+/stream$`})))
	engine.SetHTMLTemplate(pages.Templates())

	authHandler := handlers.NewAuthHandler(p.Facade, p.Cookies, p.Logger)
	pagesHandler := handlers.NewPagesHandler(p.Facade, p.Cookies, p.Logger)
	purchaseHandler := handlers.NewPurchaseHandler(p.Facade, p.Cookies)
	orderHandler := handlers.NewOrderHandler(p.Facade, p.Cookies)
	ticketHandler := handlers.NewTicketHandler(p.Facade, p.Cookies)
	catalogHandler := handlers.NewCatalogHandler(p.Facade, p.Cookies)
	healthHandler := handlers.NewHealthHandler(p.Facade, p.Logger)

	engine.GET("/", pagesHandler.Landing)
	engine.GET("/signin", pagesHandler.SignIn)
	engine.GET("/auth/google", pagesHandler.GoogleStart)
	engine.GET("/auth/callback", pagesHandler.OAuthCallback)
	engine.GET("/healthz", healthHandler.Healthz)

	dashboard := engine.Group("/dashboard")
	dashboard.Use(middleware.DashboardGate(), middleware.PageAuthRequired(p.Facade, p.Cookies))
	dashboard.GET("", pagesHandler.Dashboard)
	dashboard.GET("/*path", pagesHandler.Dashboard)

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/otp/send", authHandler.SendOTP)
	auth.POST("/otp/verify", authHandler.VerifyOTP)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/refresh", authHandler.Refresh)
	api.GET("/plans", catalogHandler.Plans)

	userAuth := api.Group("")
	userAuth.Use(middleware.AuthRequired(p.Facade, p.Cookies, p.Logger))
	userAuth.GET("/me", authHandler.Me)
	userAuth.POST("/subscriptions/purchase", purchaseHandler.Purchase)
	userAuth.GET("/purchases", purchaseHandler.List)
	userAuth.GET("/purchases/:id", purchaseHandler.Status)
	userAuth.POST("/purchases/:id/refresh", purchaseHandler.Refresh)
	userAuth.GET("/purchases/:id/stream", p.Stream.Serve)
	userAuth.GET("/orders", orderHandler.List)
	userAuth.GET("/orders/:id", orderHandler.Get)
	userAuth.GET("/products", orderHandler.Products)
	userAuth.GET("/products/:id/subscription", orderHandler.Subscription)
	userAuth.GET("/tickets", ticketHandler.List)
	userAuth.POST("/tickets", ticketHandler.Create)
	userAuth.GET("/tickets/:id", ticketHandler.Get)
	userAuth.POST("/tickets/:id/messages", ticketHandler.Reply)
	userAuth.POST("/payments/checkout", catalogHandler.Checkout)

	return engine
}
