package middleware

import (
	"net/http"

	"zefood-console/internal/models"

	"github.com/gin-gonic/gin"
)

// UserKey - ключ текущего пользователя в контексте gin
const UserKey = "user"

// Session - состояние входа, нужное для проверки доступа
type Session interface {
	User() *models.User
}

// SessionAuth пропускает запрос только при активной сессии оператора
func SessionAuth(session Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		// один снимок пользователя: сессия может истечь в любой момент
		user := session.User()
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Требуется авторизация"})
			c.Abort()
			return
		}

		c.Set(UserKey, user)
		c.Set("role", user.Role)
		c.Next()
	}
}

// CurrentUser достает пользователя, сохраненного SessionAuth
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(UserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
