package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"shiftinsight.com/shiftinsight/loader"
	"shiftinsight.com/shiftinsight/model"
	"shiftinsight.com/shiftinsight/security"
	"shiftinsight.com/shiftinsight/web/middlewares"
)

// Service is what the upload endpoints need from ingest.Service.
type Service interface {
	Load(ctx context.Context, in loader.Input, source string, progress loader.ProgressFunc) (*loader.Summary, error)
	ListLoadRuns(ctx context.Context, limit, offset int) ([]model.LoadRun, int64, error)
	GetLoadRun(ctx context.Context, loadID string) (*model.LoadRun, error)
}

type Endpoint struct {
	service        Service
	maxUploadBytes int64
	log            logrus.FieldLogger
}

// Register mounts the upload routes. r must already run middlewares.Authentication.
func Register(r *gin.RouterGroup, service Service, maxUploadBytes int64, log logrus.FieldLogger) {
	endpoint := &Endpoint{service: service, maxUploadBytes: maxUploadBytes, log: log}

	r.POST("/uploads", middlewares.RequireRole(security.RoleAdmin), endpoint.Upload)
	r.GET("/uploads", middlewares.RequireRole(security.RoleAdmin, security.RoleViewer), endpoint.List)
	r.GET("/uploads/:id", middlewares.RequireRole(security.RoleAdmin, security.RoleViewer), endpoint.Get)
}
