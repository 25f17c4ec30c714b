package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/comandaonline/comanda-api/models"
	"github.com/comandaonline/comanda-api/utils"
)

const currentUserKey = "currentUser"

// AuthMiddleware resolve o bearer token para um usuário vivo do banco.
// Usuário com soft delete fica invisível para a consulta, então o token
// dele deixa de valer na hora.
func AuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Token não fornecido"))
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Formato de token inválido"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ParseToken(tokenString)
		if err != nil || claims == nil || claims.UserID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Token inválido"))
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Token inválido"))
			c.Abort()
			return
		}

		c.Set(currentUserKey, &user)
		c.Next()
	}
}

// CurrentUser devolve o usuário autenticado colocado no contexto pelo
// AuthMiddleware, ou nil fora de rotas autenticadas.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
