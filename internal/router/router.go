package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/memodb-io/assetbucket/docs"
	"github.com/memodb-io/assetbucket/internal/config"
	"github.com/memodb-io/assetbucket/internal/middleware"
	"github.com/memodb-io/assetbucket/internal/modules/handler"
	"github.com/memodb-io/assetbucket/internal/modules/serializer"
	"github.com/memodb-io/assetbucket/internal/telemetry"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config       *config.Config
	Log          *zap.Logger
	AssetHandler *handler.AssetHandler
}

func NewRouter(d RouterDeps) (*gin.Engine, error) {
	// Initialize logger for serializer package
	serializer.SetLogger(d.Log)

	auth, err := middleware.SecretTokenAuth(d.Config)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = 8 << 20

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(telemetry.GinMiddleware(d.Config.App.Name))
		// Add trace ID to response header
		r.Use(telemetry.TraceIDMiddleware())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", handler.Health)

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/upload", auth, d.AssetHandler.Upload)
	r.GET("/asset/:base_name", d.AssetHandler.GetAsset)
	r.GET("/"+strings.Trim(d.Config.Storage.ServePrefix, "/")+"/*filepath", d.AssetHandler.ServeFile)

	del := r.Group("/delete", auth)
	{
		del.DELETE("/name/:base_name", d.AssetHandler.DeleteByName)
		del.DELETE("/uid/:uid", d.AssetHandler.DeleteByUID)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, serializer.NotFoundErr(""))
	})
	return r, nil
}
