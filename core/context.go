package core

import "github.com/gin-gonic/gin"

// authContextKey holds the request's authorization context in the gin context.
const authContextKey = "auth_context"

// AuthorizationContext is the request-scoped record of the verified principal
// consulted by role gates. It lives exactly as long as its request.
type AuthorizationContext struct {
	Principal Principal
}

// SetAuthorizationContext installs authCtx for the current request. It is a
// no-op when a context is already present, so chained interceptor stages
// cannot overwrite an earlier verification.
func SetAuthorizationContext(c *gin.Context, authCtx AuthorizationContext) {
	if _, ok := c.Get(authContextKey); ok {
		return
	}
	c.Set(authContextKey, authCtx)
}

// GetAuthorizationContext returns the request's authorization context, if any.
func GetAuthorizationContext(c *gin.Context) (AuthorizationContext, bool) {
	v, ok := c.Get(authContextKey)
	if !ok {
		return AuthorizationContext{}, false
	}
	authCtx, ok := v.(AuthorizationContext)
	return authCtx, ok
}
