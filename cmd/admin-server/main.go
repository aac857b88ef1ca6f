package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"moviehub/internal/appconfig"
	"moviehub/internal/auth"
	"moviehub/internal/errlog"
	"moviehub/internal/events"
	"moviehub/internal/health"
	"moviehub/internal/links"
	"moviehub/internal/notify"
	"moviehub/internal/resolve"
	"moviehub/internal/stats"
	"moviehub/internal/tmdb"
	"moviehub/pkg/database"
	"moviehub/pkg/utils"
)

func main() {
	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	authRepo := auth.NewRepo(db)
	if err := authRepo.EnsureDefaultAdmin(context.Background()); err != nil {
		log.Fatalf("seed default admin failed: %v", err)
	}

	srvCfg := utils.LoadServerConfig()
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// Event fanout first so binding errors surface early
	hub := events.NewHub()
	router.GET("/ws", events.WSHandler(hub))
	tcpSrv := events.NewServer(srvCfg.TCPAddr, hub)

	registry := notify.NewRegistry()
	udpSrv := notify.NewServer(srvCfg.UDPAddr, registry, nil)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		st := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": st.TCPClients,
				"ws_clients":  st.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": st.TCPClients,
			"ws_clients":  st.WSClients,
		})
	})

	router.GET("/debug", func(c *gin.Context) {
		st := hub.Stats()
		c.JSON(http.StatusOK, gin.H{
			"db":          cfg.Path,
			"tcp_clients": st.TCPClients,
			"ws_clients":  st.WSClients,
		})
	})

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/admin"))

	// Repos and services
	configStore := appconfig.NewStore(db)
	ledger := errlog.NewRepo(db)
	healthRepo := health.NewRepo(db)
	tracker := health.NewTracker(healthRepo, ledger, configStore, hub)
	linksRepo := links.NewRepo(db)
	statsRepo := stats.NewRepo(db)
	notifyRepo := notify.NewRepo(db)
	engine := resolve.NewEngine(linksRepo, tracker)
	tmdbClient := tmdb.NewClient(utils.LoadTMDBConfig())

	errlogHandler := errlog.NewHandler(ledger, hub)
	healthHandler := health.NewHandler(tracker, hub)
	statsHandler := stats.NewHandler(statsRepo, linksRepo, ledger, tracker)

	// App-facing ingest routes (unauthenticated; the fetch pipeline and
	// public API run inside the same network)
	ingest := router.Group("/admin")
	errlogHandler.RegisterIngestRoutes(ingest)
	healthHandler.RegisterIngestRoutes(ingest)
	statsHandler.RegisterIngestRoutes(ingest)

	// Operator surface (JWT-protected)
	admin := router.Group("/admin")
	admin.Use(auth.AuthMiddleware(tokenSvc, authRepo))

	admin.GET("/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
			"role":     claims.Role,
		})
	})

	links.NewHandler(linksRepo, hub).RegisterRoutes(admin)
	healthHandler.RegisterRoutes(admin)
	errlogHandler.RegisterRoutes(admin)
	appconfig.NewHandler(configStore).RegisterRoutes(admin)
	resolve.NewHandler(engine).RegisterRoutes(admin)
	statsHandler.RegisterRoutes(admin)
	tmdb.NewHandler(tmdbClient).RegisterRoutes(admin)
	notify.NewHandler(notifyRepo, udpSrv, hub).RegisterRoutes(admin)

	httpSrv := &http.Server{
		Addr:    srvCfg.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := udpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP admin server listening on %s", srvCfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}
	if err := udpSrv.Close(); err != nil {
		log.Printf("udp shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}
