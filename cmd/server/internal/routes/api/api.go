// Package api wires the transport layer: multipart submission intake, the
// two listing views, and the login/register endpoints backing the gate.
package api

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	servermiddleware "github.com/lumenworks/submission-api/cmd/server/internal/middleware"
	"github.com/lumenworks/submission-api/cmd/server/internal/submit"
	"github.com/lumenworks/submission-api/cmd/server/internal/tokens"
	"github.com/lumenworks/submission-api/internal/config"
)

const name = "github.com/lumenworks/submission-api/server/routes/api"

var tracer = otel.Tracer(name)

type Handler struct {
	DB        *gorm.DB
	submitter *submit.Service
	tokens    *tokens.Service
	config    *config.Config
}

func NewHandler(
	db *gorm.DB,
	submitter *submit.Service,
	tokenService *tokens.Service,
	cfg *config.Config,
) Handler {
	return Handler{
		DB:        db,
		submitter: submitter,
		tokens:    tokenService,
		config:    cfg,
	}
}

func (h *Handler) AddRoutes(e *echo.Echo, middlewareHandler *servermiddleware.Handler) {
	apiGroup := e.Group("/api")

	apiGroup.POST("/submit/", h.SubmitEntry)
	apiGroup.POST("/login/", h.Login)
	apiGroup.POST("/register/", h.Register)

	apiGroup.GET("/public/submissions/", h.ListPublicSubmissions)
	apiGroup.GET("/submissions/", h.ListSubmissions, middlewareHandler.BearerAuth())

	// stored attachment paths are served back relative to this prefix
	e.Static("/uploads", h.config.Upload.Dir)
}
