package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ankitsaini000/rwew-sub007/internal/config"
	"github.com/ankitsaini000/rwew-sub007/internal/http/handlers"
	"github.com/ankitsaini000/rwew-sub007/internal/http/middleware"
	"github.com/ankitsaini000/rwew-sub007/internal/models"
	"github.com/ankitsaini000/rwew-sub007/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	verificationHandler *handlers.VerificationHandler,
	offerHandler *handlers.OfferHandler,
	conversationHandler *handlers.ConversationHandler,
	reviewHandler *handlers.ReviewHandler,
	checkoutHandler *handlers.CheckoutHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Public routes
	api.GET("/ws", wsHandler.Handle)
	api.GET("/users/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListForUser)

	// The gateway signs its callbacks; no JWT involved.
	api.POST("/checkout/webhook", checkoutHandler.Webhook)

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/profile", authHandler.Me)
		protected.PUT("/profile", authHandler.UpdateProfile)

		protected.GET("/verification", verificationHandler.Get)
		protected.POST("/verification/email", verificationHandler.SubmitEmail)
		protected.POST("/verification/email/verify", verificationHandler.VerifyEmail)
		protected.POST("/verification/phone", verificationHandler.SubmitPhone)
		protected.POST("/verification/phone/verify", verificationHandler.VerifyPhone)
		protected.POST("/verification/documents", verificationHandler.SubmitDocument)
		protected.POST("/verification/payment-method", verificationHandler.SubmitPaymentMethod)

		protected.POST("/offers", offerHandler.Create)
		protected.GET("/offers", offerHandler.ListMine)
		protected.GET("/offers/:id", middleware.UUIDValidator("id"), offerHandler.Get)
		protected.POST("/offers/:id/accept", middleware.UUIDValidator("id"), offerHandler.Accept)
		protected.POST("/offers/:id/reject", middleware.UUIDValidator("id"), offerHandler.Reject)
		protected.POST("/offers/:id/counter", middleware.UUIDValidator("id"), offerHandler.Counter)

		protected.POST("/conversations", conversationHandler.Start)
		protected.GET("/conversations", conversationHandler.List)
		protected.GET("/conversations/:id", middleware.UUIDValidator("id"), conversationHandler.Get)
		protected.GET("/conversations/:id/messages", middleware.UUIDValidator("id"), conversationHandler.ListMessages)
		protected.POST("/conversations/:id/messages", middleware.UUIDValidator("id"), conversationHandler.SendMessage)
		protected.GET("/conversations/:id/offers", middleware.UUIDValidator("id"), offerHandler.ListByConversation)

		protected.POST("/reviews", reviewHandler.Create)

		protected.POST("/checkout/orders", checkoutHandler.CreateOfferOrder)
		protected.POST("/checkout/verify-method", checkoutHandler.CreateMethodVerificationOrder)
		protected.GET("/checkout/orders", checkoutHandler.List)
		protected.GET("/checkout/orders/:id", middleware.UUIDValidator("id"), checkoutHandler.Get)

		protected.GET("/notifications", notificationHandler.List)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.PUT("/notifications", notificationHandler.MarkAllAsRead)
	}

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/verifications", verificationHandler.ListPending)
		admin.POST("/verifications/:id/override", middleware.UUIDValidator("id"), verificationHandler.Override)
	}

	return r
}
