package ratelimit

import (
	"fmt"
	"strings"
)

// KeyForClient builds a limiter key for a route scope and client address.
func KeyForClient(scope, clientIP string) string {
	scope = strings.TrimSpace(scope)
	clientIP = strings.TrimSpace(clientIP)
	if scope == "" || clientIP == "" {
		return ""
	}
	return fmt.Sprintf("ip:%s:%s", scope, clientIP)
}
