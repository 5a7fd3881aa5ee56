package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking_dashboard/internal/api"
	"parking_dashboard/internal/api/handler"
	"parking_dashboard/internal/api/middleware"
	"parking_dashboard/internal/config"
	"parking_dashboard/internal/metrics"
	"parking_dashboard/internal/repository/postgresql"
	"parking_dashboard/internal/service"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Cấu hình đã được tải.")

	// 2. Setup Database Connection
	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatalf("Không thể kết nối database: %v", err)
	}
	defer db.Close()
	log.Println("Đã kết nối database thành công!")

	// 3. Chạy migrations
	if err := postgresql.RunMigrations(db, cfg.MigrationsDir); err != nil {
		log.Fatalf("Không thể chạy migrations: %v", err)
	}
	log.Println("Đã áp dụng migrations.")

	// 4. Đăng ký Prometheus metrics
	metrics.Register()

	// 5. Initialize Repositories
	userRepo := postgresql.NewPgUserRepository(db)
	customerRepo := postgresql.NewPgCustomerRepository(db)
	parkingLotRepo := postgresql.NewPgParkingLotRepository(db)
	parkingSpaceRepo := postgresql.NewPgParkingSpaceRepository(db)
	sessionRepo := postgresql.NewPgParkingSessionRepository(db)
	reportRepo := postgresql.NewPgRevenueReportRepository(db)

	// init websocket manager
	webSocketManager := handler.NewWebSocketManager()
	go webSocketManager.Start()
	log.Println("WebSocket Manager đã được khởi động.")

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpirationHours)
	reportService := service.NewReportService(reportRepo, sessionRepo, parkingSpaceRepo, parkingLotRepo)
	parkingService := service.NewParkingService(parkingLotRepo, parkingSpaceRepo, sessionRepo,
		customerRepo, reportService, webSocketManager)

	// 7. Initialize Auth Middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// 8. Background job: tổng hợp lại báo cáo doanh thu của ngày hiện tại
	jobCtx, cancelJob := context.WithCancel(context.Background())
	go startReportRefreshJob(jobCtx, parkingService, reportService, cfg.ReportJobInterval)

	// 9. Setup HTTP Router
	router := api.SetupRouter(authService, parkingService, reportService, authMiddleware, webSocketManager)

	// 10. Start HTTP Server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server đang chạy trên port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Lỗi ListenAndServe(): %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Đang tắt server...")

	cancelJob()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server buộc phải tắt: %v", err)
	}

	log.Println("Server đã tắt.")
}

// startReportRefreshJob tổng hợp lại báo cáo của ngày hiện tại cho mọi bãi
// theo chu kỳ, để dashboard có số liệu gần real-time mà không cần bấm tay.
func startReportRefreshJob(ctx context.Context, ps *service.ParkingService, rs *service.ReportService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Report refresh job đã dừng.")
			return
		case <-ticker.C:
			jobCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			today := time.Now().UTC().Format("2006-01-02")

			lots, err := ps.GetAllParkingLots(jobCtx)
			if err != nil {
				log.Printf("Report refresh job: lỗi lấy danh sách bãi: %v", err)
				cancel()
				continue
			}
			for _, lot := range lots {
				if _, err := rs.GenerateReport(jobCtx, lot.ID, today, "scheduled"); err != nil {
					log.Printf("Report refresh job: lỗi tổng hợp báo cáo bãi %d: %v", lot.ID, err)
				}
			}
			cancel()
		}
	}
}
