package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuditLog writes one structured audit line for every successful write.
func AuditLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		action, resource := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		event := log.Info().
			Str("audit_action", action).
			Str("resource_type", resource).
			Str("request_id", c.GetString(CtxRequestID)).
			Str("client_ip", c.ClientIP()).
			Int("status", status)
		if sub := c.GetString(CtxSubject); sub != "" {
			event = event.Str("subject", sub)
		}
		event.Msg("audit")
	}
}

func mapRouteToAction(route, method string) (string, string) {
	switch {
	case method == http.MethodPost && route == "/api/v1/accounts":
		return "account.create", "account"
	case method == http.MethodPatch && route == "/api/v1/accounts/:id":
		return "account.rename", "account"
	case method == http.MethodPost && route == "/api/v1/transfers":
		return "transfer.create", "transfer"
	}
	return "", ""
}
