package handlers

import (
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"qboard/internal/db"
	"qboard/internal/middleware"
	"qboard/internal/models"
	"qboard/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const questionsPerPage = 10

type QuestionHandler struct{}

func NewQuestionHandler() *QuestionHandler {
	return &QuestionHandler{}
}

// QuestionForm binds the create/modify form
type QuestionForm struct {
	Subject string `form:"subject" binding:"required,max=200"`
	Content string `form:"content" binding:"required"`
}

// parsePage defaults missing, non-numeric and non-positive values to 1
func parsePage(raw string) int {
	if raw == "" {
		return 1
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return n
	}
	return 1
}

// searchQuestionIDs selects the distinct ids of questions matching kw.
// A question matches when the keyword is a case-insensitive substring of
// its subject, its content, its author's username, any answer's content
// or any answer author's username. The answer side goes through a
// derived (question_id, content, username) table, so a question with
// several matching answers still yields a single id.
func searchQuestionIDs(gdb *gorm.DB, kw string) *gorm.DB {
	pattern := "%" + strings.ToLower(kw) + "%"

	answers := gdb.Model(&models.Answer{}).
		Select("answers.question_id AS question_id, answers.content AS content, users.username AS username").
		Joins("JOIN users ON users.id = answers.user_id")

	return gdb.Model(&models.Question{}).
		Distinct("questions.id").
		Joins("JOIN users ON users.id = questions.user_id").
		Joins("LEFT JOIN (?) AS matched_answers ON matched_answers.question_id = questions.id", answers).
		Where(
			gdb.Where("LOWER(questions.subject) LIKE ?", pattern).
				Or("LOWER(questions.content) LIKE ?", pattern).
				Or("LOWER(users.username) LIKE ?", pattern).
				Or("LOWER(matched_answers.content) LIKE ?", pattern).
				Or("LOWER(matched_answers.username) LIKE ?", pattern),
		)
}

// listQuestions returns one page of questions, newest first, plus the
// total match count. Read-only; a page past the end is an empty slice.
func listQuestions(gdb *gorm.DB, page int, kw string) ([]models.Question, int64, error) {
	base := func() *gorm.DB {
		query := gdb.Model(&models.Question{})
		if kw != "" {
			query = query.Where("questions.id IN (?)", searchQuestionIDs(gdb, kw))
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []models.Question
	err := base().Preload("User").
		Order("questions.created_at DESC").
		Limit(questionsPerPage).
		Offset((page - 1) * questionsPerPage).
		Find(&questions).Error
	if err != nil {
		return nil, 0, err
	}

	if err := fillAnswerCounts(gdb, questions); err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

// fillAnswerCounts batch-fills the per-question answer counts
func fillAnswerCounts(gdb *gorm.DB, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	questionIDs := make([]uint, len(questions))
	for i, q := range questions {
		questionIDs[i] = q.ID
	}

	type CountResult struct {
		QuestionID uint
		Count      int
	}
	var results []CountResult
	err := gdb.Model(&models.Answer{}).
		Select("question_id, COUNT(*) as count").
		Where("question_id IN ?", questionIDs).
		Group("question_id").
		Scan(&results).Error
	if err != nil {
		return err
	}

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.QuestionID] = r.Count
	}

	for i := range questions {
		questions[i].AnswerCount = countMap[questions[i].ID]
	}
	return nil
}

func questionDetailURL(id uint) string {
	return fmt.Sprintf("/question/detail/%d", id)
}

func (h *QuestionHandler) List(c *gin.Context) {
	page := parsePage(c.Query("page"))
	kw := strings.TrimSpace(c.Query("kw"))

	// Only un-searched pages are cached; mutations purge the cache.
	// The cached map holds session-independent data only and is cloned
	// per hit: Render writes the requester's own user/flashes into it.
	cacheKey := fmt.Sprintf("question:list:page:%d", page)
	if kw == "" {
		if cachedData := utils.GetCache().Get(cacheKey); cachedData != nil {
			if hData, ok := cachedData.(gin.H); ok {
				Render(c, http.StatusOK, "question/list.html", cloneH(hData))
				return
			}
		}
	}

	questions, total, err := listQuestions(db.DB, page, kw)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load questions")
		return
	}

	totalPages := int(math.Ceil(float64(total) / float64(questionsPerPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	renderData := gin.H{
		"Questions":   questions,
		"Kw":          kw,
		"Total":       total,
		"CurrentPage": page,
		"TotalPages":  totalPages,
		"Title":       "Questions",
	}

	if kw == "" {
		utils.GetCache().Set(cacheKey, cloneH(renderData), 1*time.Minute)
	}

	Render(c, http.StatusOK, "question/list.html", renderData)
}

// answerView pairs an answer with its rendered body for the detail page
type answerView struct {
	models.Answer
	ContentHTML template.HTML
	VoteCount   int
}

// renderDetail loads and renders the detail page. The answer handler
// reuses it to re-render the page with form errors.
func renderDetail(c *gin.Context, questionID uint, code int, extra gin.H) {
	var question models.Question
	err := db.DB.Preload("User").Preload("Voters").
		Preload("Answers", func(gdb *gorm.DB) *gorm.DB {
			return gdb.Order("answers.created_at ASC")
		}).
		Preload("Answers.User").Preload("Answers.Voters").
		First(&question, questionID).Error
	if err != nil {
		RenderError(c, http.StatusNotFound, "Question not found")
		return
	}

	answerViews := make([]answerView, len(question.Answers))
	for i, answer := range question.Answers {
		answerViews[i] = answerView{
			Answer:      answer,
			ContentHTML: utils.RenderMarkdown(answer.Content),
			VoteCount:   len(answer.Voters),
		}
	}

	renderData := gin.H{
		"Question":        question,
		"QuestionContent": utils.RenderMarkdown(question.Content),
		"VoteCount":       len(question.Voters),
		"Answers":         answerViews,
		"Title":           question.Subject,
	}
	for k, v := range extra {
		renderData[k] = v
	}

	Render(c, code, "question/detail.html", renderData)
}

func (h *QuestionHandler) Detail(c *gin.Context) {
	id := utils.StringToInt(c.Param("id"))
	if id <= 0 {
		RenderError(c, http.StatusNotFound, "Question not found")
		return
	}
	renderDetail(c, uint(id), http.StatusOK, nil)
}

func (h *QuestionHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "question/form.html", gin.H{"Title": "Ask a question"})
}

func (h *QuestionHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var form QuestionForm
	if err := c.ShouldBind(&form); err != nil {
		Render(c, http.StatusBadRequest, "question/form.html", gin.H{
			"Title":   "Ask a question",
			"Error":   "Subject and content are both required",
			"Subject": c.PostForm("subject"),
			"Content": c.PostForm("content"),
		})
		return
	}

	question := models.Question{
		UserID:  user.ID,
		Subject: form.Subject,
		Content: form.Content,
	}
	if err := db.DB.Create(&question).Error; err != nil {
		Render(c, http.StatusInternalServerError, "question/form.html", gin.H{
			"Title":   "Ask a question",
			"Error":   "Failed to save the question",
			"Subject": form.Subject,
			"Content": form.Content,
		})
		return
	}

	utils.GetCache().Purge()

	c.Redirect(http.StatusFound, "/")
}

func (h *QuestionHandler) ShowModify(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	var question models.Question
	if err := db.DB.First(&question, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Question not found")
		return
	}

	if question.UserID != user.ID {
		Flash(c, "You don't have permission to modify this question.")
		c.Redirect(http.StatusFound, questionDetailURL(question.ID))
		return
	}

	Render(c, http.StatusOK, "question/form.html", gin.H{
		"Title":    "Modify question",
		"Question": question,
		"Subject":  question.Subject,
		"Content":  question.Content,
	})
}

func (h *QuestionHandler) Modify(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	var question models.Question
	if err := db.DB.First(&question, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Question not found")
		return
	}

	// Owner mismatch is advisory: warn and redirect, no error status
	if question.UserID != user.ID {
		Flash(c, "You don't have permission to modify this question.")
		c.Redirect(http.StatusFound, questionDetailURL(question.ID))
		return
	}

	var form QuestionForm
	if err := c.ShouldBind(&form); err != nil {
		Render(c, http.StatusBadRequest, "question/form.html", gin.H{
			"Title":    "Modify question",
			"Error":    "Subject and content are both required",
			"Question": question,
			"Subject":  c.PostForm("subject"),
			"Content":  c.PostForm("content"),
		})
		return
	}

	now := time.Now()
	question.Subject = form.Subject
	question.Content = form.Content
	question.ModifiedAt = &now

	if err := db.DB.Save(&question).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to save the question")
		return
	}

	utils.GetCache().Purge()

	c.Redirect(http.StatusFound, questionDetailURL(question.ID))
}

func (h *QuestionHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	var question models.Question
	if err := db.DB.First(&question, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Question not found")
		return
	}

	if question.UserID != user.ID {
		Flash(c, "You don't have permission to delete this question.")
		c.Redirect(http.StatusFound, questionDetailURL(question.ID))
		return
	}

	// Hard delete; answers and voter rows go with it
	tx := db.DB.Begin()
	if err := tx.Select("Answers", "Voters").Delete(&question).Error; err != nil {
		tx.Rollback()
		RenderError(c, http.StatusInternalServerError, "Failed to delete the question")
		return
	}
	tx.Commit()

	utils.GetCache().Purge()

	c.Redirect(http.StatusFound, "/")
}

func (h *QuestionHandler) Vote(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	var question models.Question
	if err := db.DB.First(&question, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Question not found")
		return
	}

	if question.UserID == user.ID {
		Flash(c, "You can't vote for your own question.")
		c.Redirect(http.StatusFound, questionDetailURL(question.ID))
		return
	}

	// The join table's composite key makes a repeat vote a no-op
	tx := db.DB.Begin()
	if err := tx.Model(&question).Association("Voters").Append(user); err != nil {
		tx.Rollback()
		RenderError(c, http.StatusInternalServerError, "Failed to record the vote")
		return
	}
	tx.Commit()

	utils.GetCache().Purge()

	c.Redirect(http.StatusFound, questionDetailURL(question.ID))
}
