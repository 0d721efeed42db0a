package router

import (
	"net/http"
	"qboard/internal/handlers"
	"qboard/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	authHandler := handlers.NewAuthHandler()
	questionHandler := handlers.NewQuestionHandler()
	answerHandler := handlers.NewAnswerHandler()

	// Public Routes
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/question/list/")
	})
	r.GET("/question/list/", questionHandler.List)
	r.GET("/question/detail/:id", questionHandler.Detail)

	r.GET("/signup", authHandler.ShowSignup)
	r.POST("/signup", authHandler.Signup)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/question/create", questionHandler.ShowCreate)
		authorized.POST("/question/create", questionHandler.Create)
		authorized.GET("/question/modify/:id", questionHandler.ShowModify)
		authorized.POST("/question/modify/:id", questionHandler.Modify)
		authorized.GET("/question/delete/:id", questionHandler.Delete)
		authorized.GET("/question/vote/:id", questionHandler.Vote)

		authorized.POST("/answer/create/:question_id", answerHandler.Create)
		authorized.GET("/answer/modify/:id", answerHandler.ShowModify)
		authorized.POST("/answer/modify/:id", answerHandler.Modify)
		authorized.GET("/answer/delete/:id", answerHandler.Delete)
		authorized.GET("/answer/vote/:id", answerHandler.Vote)
	}
}
