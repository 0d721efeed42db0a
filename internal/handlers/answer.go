package handlers

import (
	"net/http"
	"time"

	"qboard/internal/db"
	"qboard/internal/middleware"
	"qboard/internal/models"
	"qboard/internal/utils"

	"github.com/gin-gonic/gin"
)

type AnswerHandler struct{}

func NewAnswerHandler() *AnswerHandler {
	return &AnswerHandler{}
}

type AnswerForm struct {
	Content string `form:"content" binding:"required"`
}

func (h *AnswerHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	questionID := utils.StringToInt(c.Param("question_id"))

	var question models.Question
	if err := db.DB.First(&question, questionID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Question not found")
		return
	}

	var form AnswerForm
	if err := c.ShouldBind(&form); err != nil {
		renderDetail(c, question.ID, http.StatusBadRequest, gin.H{
			"AnswerError": "Answer content is required",
		})
		return
	}

	answer := models.Answer{
		QuestionID: question.ID,
		UserID:     user.ID,
		Content:    form.Content,
	}
	if err := db.DB.Create(&answer).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to save the answer")
		return
	}

	utils.GetCache().Purge()

	c.Redirect(http.StatusFound, questionDetailURL(question.ID))
}

func (h *AnswerHandler) ShowModify(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	var answer models.Answer
	if err := db.DB.First(&answer, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Answer not found")
		return
	}

	if answer.UserID != user.ID {
		Flash(c, "You don't have permission to modify this answer.")
		c.Redirect(http.StatusFound, questionDetailURL(answer.QuestionID))
		return
	}

	Render(c, http.StatusOK, "answer/form.html", gin.H{
		"Title":   "Modify answer",
		"Answer":  answer,
		"Content": answer.Content,
	})
}

func (h *AnswerHandler) Modify(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	var answer models.Answer
	if err := db.DB.First(&answer, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Answer not found")
		return
	}

	if answer.UserID != user.ID {
		Flash(c, "You don't have permission to modify this answer.")
		c.Redirect(http.StatusFound, questionDetailURL(answer.QuestionID))
		return
	}

	var form AnswerForm
	if err := c.ShouldBind(&form); err != nil {
		Render(c, http.StatusBadRequest, "answer/form.html", gin.H{
			"Title":   "Modify answer",
			"Error":   "Answer content is required",
			"Answer":  answer,
			"Content": c.PostForm("content"),
		})
		return
	}

	now := time.Now()
	answer.Content = form.Content
	answer.ModifiedAt = &now

	if err := db.DB.Save(&answer).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to save the answer")
		return
	}

	utils.GetCache().Purge()

	c.Redirect(http.StatusFound, questionDetailURL(answer.QuestionID))
}

func (h *AnswerHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	var answer models.Answer
	if err := db.DB.First(&answer, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Answer not found")
		return
	}

	if answer.UserID != user.ID {
		Flash(c, "You don't have permission to delete this answer.")
		c.Redirect(http.StatusFound, questionDetailURL(answer.QuestionID))
		return
	}

	tx := db.DB.Begin()
	if err := tx.Select("Voters").Delete(&answer).Error; err != nil {
		tx.Rollback()
		RenderError(c, http.StatusInternalServerError, "Failed to delete the answer")
		return
	}
	tx.Commit()

	utils.GetCache().Purge()

	c.Redirect(http.StatusFound, questionDetailURL(answer.QuestionID))
}

func (h *AnswerHandler) Vote(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	var answer models.Answer
	if err := db.DB.First(&answer, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Answer not found")
		return
	}

	if answer.UserID == user.ID {
		Flash(c, "You can't vote for your own answer.")
		c.Redirect(http.StatusFound, questionDetailURL(answer.QuestionID))
		return
	}

	tx := db.DB.Begin()
	if err := tx.Model(&answer).Association("Voters").Append(user); err != nil {
		tx.Rollback()
		RenderError(c, http.StatusInternalServerError, "Failed to record the vote")
		return
	}
	tx.Commit()

	utils.GetCache().Purge()

	c.Redirect(http.StatusFound, questionDetailURL(answer.QuestionID))
}
