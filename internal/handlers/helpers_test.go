package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"qboard/internal/db"
	"qboard/internal/middleware"
	"qboard/internal/models"
	"qboard/internal/utils"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "pass123456"

// bcrypt is slow; hash the shared test password once
var testPasswordHash string

func init() {
	gin.SetMode(gin.TestMode)
	hash, err := utils.HashPassword(testPassword)
	if err != nil {
		panic(err)
	}
	testPasswordHash = hash
}

// setupTest points the global db handle at a fresh sqlite database and
// returns an engine with the same session/middleware/route wiring as
// cmd/server, minus the real templates.
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "qboard_test.db") + "?_fk=1"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	db.DB = gdb

	utils.GetCache().Purge()

	r := gin.New()
	store := cookie.NewStore([]byte("test_secret"))
	r.Use(sessions.Sessions("qboard_session", store))
	r.HTMLRender = testTemplates()
	r.Use(middleware.LoadUser())

	authHandler := NewAuthHandler()
	questionHandler := NewQuestionHandler()
	answerHandler := NewAnswerHandler()

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

	return r
}

func testTemplates() multitemplate.Render {
	r := multitemplate.New()
	r.AddFromString("question/list.html", `{{ with .CurrentUser }}user:{{ .Username }}{{ else }}anonymous{{ end }} {{ .CurrentPage }}/{{ .TotalPages }}:{{ len .Questions }}`)
	r.AddFromString("question/detail.html", `q{{ .Question.ID }} answers:{{ len .Answers }} votes:{{ .VoteCount }}{{ if .AnswerError }} error:{{ .AnswerError }}{{ end }}{{ range .Flashes }} flash:{{ . }}{{ end }}`)
	r.AddFromString("question/form.html", `form{{ if .Error }} error:{{ .Error }}{{ end }}`)
	r.AddFromString("answer/form.html", `form{{ if .Error }} error:{{ .Error }}{{ end }}`)
	r.AddFromString("auth/login.html", `login{{ if .Error }} error:{{ .Error }}{{ end }}`)
	r.AddFromString("auth/signup.html", `signup{{ if .Error }} error:{{ .Error }}{{ end }}`)
	r.AddFromString("error.html", `error:{{ .Error }}`)
	return r
}

func createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: testPasswordHash,
	}
	require.NoError(t, db.DB.Create(&user).Error)
	return &user
}

func createQuestion(t *testing.T, owner *models.User, subject, content string, createdAt time.Time) *models.Question {
	t.Helper()
	question := models.Question{
		UserID:    owner.ID,
		Subject:   subject,
		Content:   content,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.DB.Create(&question).Error)
	return &question
}

func createAnswer(t *testing.T, question *models.Question, owner *models.User, content string) *models.Answer {
	t.Helper()
	answer := models.Answer{
		QuestionID: question.ID,
		UserID:     owner.ID,
		Content:    content,
	}
	require.NoError(t, db.DB.Create(&answer).Error)
	return &answer
}

// login runs the real login handler and returns the session cookie
func login(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	form := url.Values{"username": {username}, "password": {testPassword}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code)

	var parts []string
	for _, c := range w.Result().Cookies() {
		parts = append(parts, c.Name+"="+c.Value)
	}
	require.NotEmpty(t, parts)
	return strings.Join(parts, "; ")
}

func get(r *gin.Engine, path, sessionCookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionCookie != "" {
		req.Header.Set("Cookie", sessionCookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postForm(r *gin.Engine, path, sessionCookie string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sessionCookie != "" {
		req.Header.Set("Cookie", sessionCookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
