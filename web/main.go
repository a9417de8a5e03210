package main

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"shiftinsight.com/shiftinsight/config"
	"shiftinsight.com/shiftinsight/ingest"
	"shiftinsight.com/shiftinsight/security"
	"shiftinsight.com/shiftinsight/web/handlers"
	"shiftinsight.com/shiftinsight/web/middlewares"
)

func main() {
	cfg := config.Use()
	logger := config.NewLogger(cfg.LogrusLogLevel())

	jwtSecret, err := security.DecodeSecret(cfg.SigningSecret)
	if err != nil {
		logger.WithError(err).Fatal("failed to decode JWT secret")
	}

	svc, err := ingest.Open(context.Background(), cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open warehouse")
	}
	defer svc.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AddAllowHeaders("Authorization")
	corsConfig.AddExposeHeaders("X-Load-ID")
	switch {
	case len(cfg.CorsOrigins) > 0:
		corsConfig.AllowOrigins = cfg.CorsOrigins
		corsConfig.AllowCredentials = true
		r.Use(cors.New(corsConfig))
	case !cfg.IsProduction():
		corsConfig.AllowAllOrigins = true
		r.Use(cors.New(corsConfig))
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	protected := r.Group("/api")
	protected.Use(middlewares.Authentication(jwtSecret))
	{
		protected.GET("/whoami", func(c *gin.Context) {
			claims, _ := middlewares.Claims(c)
			c.JSON(http.StatusOK, gin.H{
				"user": claims.UniqueName,
				"role": claims.Role,
			})
		})
		handlers.Register(protected, svc, cfg.MaxUploadBytes(), logger)
	}

	logger.WithField("address", cfg.Address()).Info("listening")
	if err := r.Run(cfg.Address()); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
