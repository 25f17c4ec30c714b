package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comandaonline/comanda-api/models"
	"github.com/comandaonline/comanda-api/utils"
)

// OwnerOnly barra qualquer usuário que não seja OWNER. A checagem de posse
// do bar em si fica no controller, junto da consulta.
func OwnerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Token inválido"))
			c.Abort()
			return
		}

		if user.Role != models.RoleOwner {
			utils.RespondError(c, http.StatusForbidden, errors.New("Apenas o dono pode acessar relatórios"))
			c.Abort()
			return
		}

		c.Next()
	}
}
