package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/cjmartens/homestead/internal/auth"
	"github.com/cjmartens/homestead/internal/handlers"
	"github.com/cjmartens/homestead/internal/middleware"
	"github.com/cjmartens/homestead/internal/services"
	"github.com/cjmartens/homestead/pkg/mail"
)

// Options carries the tunables the router needs beyond its service
// dependencies.
type Options struct {
	Mailer        mail.Mailer
	InviteBaseURL string
	InviteExpiry  time.Duration
	FreeHomeLimit int
	OIDCProvider  *iauth.OIDCProvider
	OIDCName      string
	RateLimit     int
	RateWindow    time.Duration
}

// NewRouter builds the Gin engine, wires middleware and registers all
// routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, sessions *iauth.SessionService, opts Options) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}

	shareStore, err := services.NewShareStore(db)
	if err != nil {
		return nil, err
	}

	userService, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}

	activityService, err := services.NewActivityService(db)
	if err != nil {
		return nil, err
	}

	homeOpts := []services.HomeOption{services.WithHomeActivity(activityService)}
	if opts.FreeHomeLimit > 0 {
		homeOpts = append(homeOpts, services.WithFreeHomeLimit(opts.FreeHomeLimit))
	}
	homeService, err := services.NewHomeService(db, shareStore, homeOpts...)
	if err != nil {
		return nil, err
	}

	inviteOpts := []services.InviteOption{services.WithInviteActivity(activityService)}
	if opts.InviteBaseURL != "" {
		inviteOpts = append(inviteOpts, services.WithInviteBaseURL(opts.InviteBaseURL))
	}
	if opts.InviteExpiry > 0 {
		inviteOpts = append(inviteOpts, services.WithInviteExpiry(opts.InviteExpiry))
	}
	inviteService, err := services.NewInviteService(db, shareStore, opts.Mailer, inviteOpts...)
	if err != nil {
		return nil, err
	}

	roomService, err := services.NewRoomService(db)
	if err != nil {
		return nil, err
	}
	itemService, err := services.NewItemService(db)
	if err != nil {
		return nil, err
	}
	taskService, err := services.NewTaskService(db)
	if err != nil {
		return nil, err
	}
	paintService, err := services.NewPaintService(db)
	if err != nil {
		return nil, err
	}
	flooringService, err := services.NewFlooringService(db)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if opts.RateLimit > 0 && opts.RateWindow > 0 {
		r.Use(middleware.RateLimit(opts.RateLimit, opts.RateWindow))
	}

	r.NoRoute(middleware.NotFoundHandler)

	// Public endpoints
	r.GET("/health", handlers.Health(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(userService, sessions)
	ssoHandler := handlers.NewSSOHandler(opts.OIDCProvider, userService, sessions, opts.OIDCName)
	inviteHandler := handlers.NewInviteHandler(inviteService)

	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.GET("/sso/login", ssoHandler.Login)
		auth.GET("/sso/callback", ssoHandler.Callback)
	}

	// Invite previews and signup-accepts are public; the accept page drives
	// both before the invitee has a session.
	r.GET("/api/invites/:token", inviteHandler.Info)
	r.POST("/api/invites/accept/signup", inviteHandler.AcceptWithSignup)

	requireAuth := middleware.Auth(jwt)
	api := r.Group("/api")
	api.Use(requireAuth)

	api.GET("/auth/me", authHandler.Me)
	api.PATCH("/auth/me", authHandler.UpdateProfile)
	api.POST("/auth/logout", authHandler.Logout)

	api.POST("/invites/accept", inviteHandler.Accept)

	homeHandler := handlers.NewHomeHandler(homeService)
	roomHandler := handlers.NewRoomHandler(roomService)
	itemHandler := handlers.NewItemHandler(itemService)
	taskHandler := handlers.NewTaskHandler(taskService)
	paintHandler := handlers.NewPaintHandler(paintService)
	flooringHandler := handlers.NewFlooringHandler(flooringService)
	activityHandler := handlers.NewActivityHandler(homeService, activityService)

	homes := api.Group("/homes")
	{
		homes.GET("", homeHandler.List)
		homes.POST("", homeHandler.Create)
		homes.GET("/:homeID", homeHandler.Get)
		homes.PATCH("/:homeID", homeHandler.Update)
		homes.DELETE("/:homeID", homeHandler.Delete)

		homes.GET("/:homeID/activity", activityHandler.List)

		homes.GET("/:homeID/shares", homeHandler.ListShares)
		homes.POST("/:homeID/shares", homeHandler.ShareWithUser)
		homes.DELETE("/:homeID/shares/:shareID", homeHandler.RevokeShare)

		homes.GET("/:homeID/invites", inviteHandler.List)
		homes.POST("/:homeID/invites", inviteHandler.Create)
		homes.POST("/:homeID/invites/:inviteID/resend", inviteHandler.Resend)
		homes.DELETE("/:homeID/invites/:inviteID", inviteHandler.Revoke)

		homes.GET("/:homeID/rooms", roomHandler.List)
		homes.POST("/:homeID/rooms", roomHandler.Create)
		homes.GET("/:homeID/rooms/:roomID", roomHandler.Get)
		homes.PUT("/:homeID/rooms/:roomID", roomHandler.Update)
		homes.DELETE("/:homeID/rooms/:roomID", roomHandler.Delete)

		homes.GET("/:homeID/items", itemHandler.List)
		homes.POST("/:homeID/items", itemHandler.Create)
		homes.GET("/:homeID/items/:itemID", itemHandler.Get)
		homes.PUT("/:homeID/items/:itemID", itemHandler.Update)
		homes.DELETE("/:homeID/items/:itemID", itemHandler.Delete)

		homes.GET("/:homeID/tasks", taskHandler.List)
		homes.POST("/:homeID/tasks", taskHandler.Create)
		homes.GET("/:homeID/tasks/:taskID", taskHandler.Get)
		homes.PUT("/:homeID/tasks/:taskID", taskHandler.Update)
		homes.PATCH("/:homeID/tasks/:taskID/status", taskHandler.UpdateStatus)
		homes.POST("/:homeID/tasks/:taskID/complete", taskHandler.Complete)
		homes.DELETE("/:homeID/tasks/:taskID", taskHandler.Delete)

		homes.GET("/:homeID/paints", paintHandler.List)
		homes.POST("/:homeID/paints", paintHandler.Create)
		homes.PUT("/:homeID/paints/:paintID", paintHandler.Update)
		homes.DELETE("/:homeID/paints/:paintID", paintHandler.Delete)

		homes.GET("/:homeID/floorings", flooringHandler.List)
		homes.POST("/:homeID/floorings", flooringHandler.Create)
		homes.PUT("/:homeID/floorings/:flooringID", flooringHandler.Update)
		homes.DELETE("/:homeID/floorings/:flooringID", flooringHandler.Delete)
	}

	return r, nil
}
