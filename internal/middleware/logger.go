package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	ua "github.com/mssola/user_agent"
	"github.com/sirupsen/logrus"
)

// ClientInfo is the parsed User-Agent of a caller
type ClientInfo struct {
	Browser  string
	OS       string
	Platform string
	IsBot    bool
}

// ParseClient parses a User-Agent header into log fields
func ParseClient(userAgent string) ClientInfo {
	if userAgent == "" {
		return ClientInfo{Browser: "Unknown", OS: "Unknown", Platform: "unknown"}
	}

	parser := ua.New(userAgent)
	name, version := parser.Browser()
	browser := name
	if version != "" {
		browser = name + " " + version
	}

	return ClientInfo{
		Browser:  browser,
		OS:       parser.OS(),
		Platform: parser.Platform(),
		IsBot:    parser.Bot(),
	}
}

// RequestLogger logs each completed request, leveled by status code
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		client := ParseClient(c.Request.UserAgent())
		status := c.Writer.Status()

		entry := logger.WithFields(logrus.Fields{
			"request_id": GetRequestID(c),
			"status":     status,
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         ClientIP(c),
			"latency_ms": time.Since(start).Milliseconds(),
			"browser":    client.Browser,
			"os":         client.OS,
			"is_bot":     client.IsBot,
		})

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}
