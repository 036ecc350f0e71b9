package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// SanitizeQueryParams strips markup from every query parameter value
// using bluemonday. Search input in particular is echoed back in
// responses, so it never carries HTML past this point.
func SanitizeQueryParams() gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()
	return func(c *gin.Context) {
		query := c.Request.URL.Query()
		changed := false
		for key, values := range query {
			for i, v := range values {
				clean := policy.Sanitize(v)
				if clean != v {
					values[i] = clean
					changed = true
				}
			}
			query[key] = values
		}
		if changed {
			c.Request.URL.RawQuery = query.Encode()
		}
		c.Next()
	}
}
