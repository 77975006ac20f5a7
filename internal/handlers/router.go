package handlers

import (
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const welcomeMessage = "Welcome to the Trip Service API!"

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping() error
}

var jsonFieldNamesOnce sync.Once

// RegisterRoutes mounts the trip API under /trip-service along with the welcome and
// fallback routes.
func RegisterRoutes(router *gin.Engine, trips *TripHandler) {
	useJSONFieldNames()

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, welcomeMessage)
	})

	api := router.Group("/trip-service")
	{
		api.POST("/trips", trips.CreateTrip)
		api.GET("/trips/:key/:sub/:tripDate", trips.GetTripsByRouteAndDate)
		api.GET("/trips/:key/:sub", trips.GetTripsByScheduleAndDate)
		api.GET("/trips/:key", trips.GetTripByID)
		api.PATCH("/trips/:key/booking-status", trips.UpdateBookingStatus)
		api.PATCH("/trips/:key", trips.UpdateBookingStatus)
		api.PATCH("/trips/:key/confirm-seat", trips.ConfirmSeat)
		api.DELETE("/trips/:key", trips.DeleteTrip)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Route not found"})
	})
}

// HealthCheck reports service and database health
func HealthCheck(db Pinger, logger *logrus.Logger, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.WithError(err).Error("Health check database ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}

// useJSONFieldNames makes binding errors report the JSON name of a field
func useJSONFieldNames() {
	jsonFieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}
