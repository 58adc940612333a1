package handlers

import (
	"net/http"
	"strings"

	"mealhub/internal/database"
	"mealhub/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type actorForm struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// CreateActor — единственная запись, доступная без авторизации
// (кроме демо-сида): регистрация актора по email
func CreateActor(c *gin.Context) {
	var form actorForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	form.Email = strings.ToLower(strings.TrimSpace(form.Email))
	if !strings.Contains(form.Email, "@") || len(form.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email must be valid and password at least 6 characters"})
		return
	}

	var count int64
	database.DB.Model(&models.Actor{}).
		Where("email = ?", form.Email).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actor with this email already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	actor := models.Actor{
		Email:        form.Email,
		Name:         strings.TrimSpace(form.Name),
		PasswordHash: string(hash),
	}
	if err := database.DB.Create(&actor).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create actor"})
		return
	}

	c.JSON(http.StatusOK, actor)
}

type loginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var actor models.Actor
	err := database.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(form.Email))).
		First(&actor).Error
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(form.Password)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email or password"})
		return
	}

	sess := sessions.Default(c)
	sess.Set("actor_id", actor.ID)
	_ = sess.Save()

	c.JSON(http.StatusOK, gin.H{"ok": true, "actor": actor})
}

func Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
