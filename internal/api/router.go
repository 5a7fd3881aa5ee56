package api

import (
	"parking_dashboard/internal/api/handler"
	"parking_dashboard/internal/api/middleware"
	"parking_dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(as *service.AuthService, ps *service.ParkingService, rs *service.ReportService,
	authMw *middleware.AuthMiddleware, wsManager *handler.WebSocketManager) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket endpoint (không cần auth cho real-time connection)
	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(as)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		lotH := handler.NewParkingLotHandler(ps)
		reportH := handler.NewReportHandler(rs)
		lotRoutes := v1.Group("/parking-lots")
		{
			lotRoutes.POST("", authMw.AuthorizeRole("admin"), lotH.CreateParkingLot)
			lotRoutes.GET("", lotH.GetAllParkingLots)
			lotRoutes.GET("/:id", lotH.GetParkingLotByID)
			lotRoutes.PUT("/:id", authMw.AuthorizeRole("admin"), lotH.UpdateParkingLot)
			lotRoutes.DELETE("/:id", authMw.AuthorizeRole("admin"), lotH.DeleteParkingLot)

			lotRoutes.GET("/:id/spaces", lotH.GetSpacesByLotID)
			lotRoutes.GET("/:id/stats", lotH.GetParkingLotStats)
			lotRoutes.GET("/:id/reports", reportH.GetReportsByLot)
		}

		spaceH := handler.NewParkingSpaceHandler(ps)
		spaceRoutes := v1.Group("/parking-spaces")
		{
			spaceRoutes.GET("/:space_id", spaceH.GetParkingSpaceByID)
			spaceRoutes.PUT("/:space_id/status", spaceH.UpdateSpaceStatus)
			spaceRoutes.GET("/:space_id/active-session", spaceH.GetActiveSession)
		}

		sessionH := handler.NewParkingSessionHandler(ps)
		sessionRoutes := v1.Group("/parking-sessions")
		{
			sessionRoutes.POST("/check-in", sessionH.CheckIn)
			sessionRoutes.POST("/:id/check-out", sessionH.CheckOut)
			sessionRoutes.GET("", sessionH.FindParkingSessions)
			sessionRoutes.GET("/:id", sessionH.GetParkingSessionByID)
		}

		reportRoutes := v1.Group("/reports")
		{
			reportRoutes.POST("/generate", reportH.GenerateReport)
		}
	}

	return r
}
