package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aptper/internal/api"
	"github.com/wonny/aptper/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 시세/평가 조회 엔드포인트 제공
- 단지 등록과 배치 트리거 제공

Endpoints:
  GET    /health                     - Health check
  GET    /api/apartments             - 추적 단지 목록
  GET    /api/apartments/series      - 저장된 월간 시리즈 조회
  GET    /api/apartments/valuation   - 병합 시리즈와 PER 평가 조회
  GET    /api/summaries              - 발행된 스냅샷 목록
  POST   /api/admin/apartments       - 단지 등록
  DELETE /api/admin/apartments       - 단지 삭제
  POST   /api/admin/refresh          - 시세 갱신 트리거
  POST   /api/admin/publish          - 스냅샷 발행 트리거

Example:
  go run ./cmd/aptper api
  go run ./cmd/aptper api --port 8089`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== aptper API Server ===")

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	// Override port if flag is set
	if apiPort != "" {
		d.config.Port = apiPort
	}

	log := d.logger
	log.WithFields(map[string]interface{}{
		"port": d.config.Port,
		"env":  d.config.Env,
	}).Info("Initializing API server")

	// Create handlers and router
	aptHandler := handlers.NewApartmentHandler(d.repo, d.summaries, d.cache, d.config, log)
	adminHandler := handlers.NewAdminHandler(
		d.repo, d.summaries, d.asil, d.updater, d.publisher, d.cache, d.config, log)
	router := api.NewRouter(aptHandler, adminHandler, log)

	// Create server
	server := api.New(d.config, log, router)

	// Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", d.config.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET    /health")
	fmt.Println("  GET    /api/apartments")
	fmt.Println("  GET    /api/apartments/series")
	fmt.Println("  GET    /api/apartments/valuation")
	fmt.Println("  GET    /api/summaries")
	fmt.Println("  POST   /api/admin/apartments")
	fmt.Println("  DELETE /api/admin/apartments")
	fmt.Println("  POST   /api/admin/refresh")
	fmt.Println("  POST   /api/admin/publish")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
