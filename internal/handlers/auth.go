package handlers

import (
	"net/http"
	"qboard/internal/db"
	"qboard/internal/models"
	"qboard/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// SignupForm binds the registration form
type SignupForm struct {
	Username  string `form:"username" binding:"required,min=3,max=25"`
	Email     string `form:"email" binding:"required,email"`
	Password  string `form:"password" binding:"required,min=6"`
	Password2 string `form:"password2" binding:"required,eqfield=Password"`
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	Render(c, http.StatusOK, "auth/signup.html", nil)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var form SignupForm
	if err := c.ShouldBind(&form); err != nil {
		Render(c, http.StatusBadRequest, "auth/signup.html", gin.H{
			"Error":    "Please fill in username, email and matching passwords (password at least 6 characters).",
			"Username": c.PostForm("username"),
			"Email":    c.PostForm("email"),
		})
		return
	}

	var existing models.User
	if err := db.DB.Where("username = ? OR email = ?", form.Username, form.Email).First(&existing).Error; err == nil {
		Render(c, http.StatusConflict, "auth/signup.html", gin.H{
			"Error":    "That username or email is already registered.",
			"Username": form.Username,
			"Email":    form.Email,
		})
		return
	}

	hash, err := utils.HashPassword(form.Password)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Signup failed")
		return
	}

	user := models.User{
		Username: form.Username,
		Email:    form.Email,
		Password: hash,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		Render(c, http.StatusConflict, "auth/signup.html", gin.H{
			"Error":    "That username or email is already registered.",
			"Username": form.Username,
			"Email":    form.Email,
		})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		Render(c, http.StatusBadRequest, "auth/login.html", gin.H{"Error": "Username and password are required"})
		return
	}

	var user models.User
	if err := db.DB.Where("username = ?", form.Username).First(&user).Error; err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Unknown username or wrong password"})
		return
	}

	if !utils.CheckPasswordHash(form.Password, user.Password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Unknown username or wrong password"})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}
