package handlers

import (
	"qboard/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// cloneH shallow-copies a render payload. Cached payloads are shared
// across requests and Render mutates its argument, so every consumer
// must get its own copy.
func cloneH(obj gin.H) gin.H {
	out := make(gin.H, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	return out
}

// Render helper to inject common variables like 'current user' and flashes
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	// Inject Current User
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		obj["CurrentUser"] = user
	}

	// Pending flash messages (reading clears them)
	session := sessions.Default(c)
	if flashes := session.Flashes(); len(flashes) > 0 {
		session.Save()
		obj["Flashes"] = flashes
	}

	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// Flash queues a message for the next rendered page. Used for the soft
// authorization warnings: the request still completes with a redirect.
func Flash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	session.Save()
}

// RenderError renders the shared error page
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}
