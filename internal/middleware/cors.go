package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// The service only routes GET (health, sessions, history, ws) and POST
// (webhook, session management); there is nothing to PUT or DELETE, and
// no auth header to allow.
const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type"
)

// CORS lets browser dashboards call the management API from another
// origin. origins is "*" or a comma-separated allow-list; empty means
// allow all.
func CORS(origins string) gin.HandlerFunc {
	allowed := make(map[string]struct{})
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = struct{}{}
		}
	}
	_, wildcard := allowed["*"]

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allow := ""
		switch {
		case wildcard || len(allowed) == 0:
			allow = "*"
		case origin != "":
			if _, ok := allowed[origin]; ok {
				allow = origin
			}
		}
		if allow != "" {
			c.Header("Access-Control-Allow-Origin", allow)
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Max-Age", "86400")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
