package controllers

import (
	"github.com/comandaonline/comanda-api/models"
)

// CanAccessBar é a regra única de autorização por estabelecimento:
// o dono age sobre os próprios bares, garçom/gerente sobre os bares do
// dono que os cadastrou. Qualquer outra combinação é negada.
func CanAccessBar(user *models.User, barOwnerID uint) bool {
	if user == nil {
		return false
	}
	switch user.Role {
	case models.RoleOwner:
		return user.ID == barOwnerID
	case models.RoleWaiter, models.RoleManager:
		return user.OwnerID != nil && *user.OwnerID == barOwnerID
	}
	return false
}
