// Package httpapi serves the lubricant and report operations over HTTP.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/theplant/pagequery/lubricant"
	"github.com/theplant/pagequery/report"
)

type Services struct {
	Lubricants *lubricant.Service
	Reports    *report.Service
}

func NewRouter(log *logrus.Logger, origins []string, services Services) *gin.Engine {
	if services.Lubricants == nil || services.Reports == nil {
		panic("services must be set")
	}

	r := gin.New()
	r.Use(RequestLogger(log), gin.Recovery(), CORS(origins))
	if err := r.SetTrustedProxies(nil); err != nil {
		log.WithError(err).Warn("set trusted proxies")
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found", "path": c.Request.URL.Path})
	})

	lubricants := r.Group("/lubricants")
	lubricants.GET("", listHandler(services.Lubricants.List))
	lubricants.POST("", createHandler(services.Lubricants.Create))
	lubricants.PATCH("/:id", updateHandler(services.Lubricants.Update))

	reports := r.Group("/reports")
	reports.GET("", listHandler(services.Reports.List))
	reports.POST("", createHandler(services.Reports.Create))
	reports.PATCH("/:id", updateHandler(services.Reports.Update))

	return r
}
