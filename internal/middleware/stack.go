package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/trip-service/internal/metrics"
)

// Stack returns the global middleware chain in order. Recovery is innermost so a
// request that panics is still access-logged and counted.
func Stack(logger *logrus.Logger) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		RequestID(),
		RequestLogger(logger),
		metrics.Middleware(),
		Recovery(logger),
	}
}
