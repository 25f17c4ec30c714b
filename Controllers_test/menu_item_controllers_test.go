package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/comandaonline/comanda-api/controllers"
	"github.com/comandaonline/comanda-api/middlewares"
)

func setupMenuItemRouter(db *gorm.DB) *gin.Engine {
	router := gin.Default()
	menuCtrl := controllers.NewMenuItemController(db)

	auth := router.Group("/")
	auth.Use(middlewares.AuthMiddleware(db))
	auth.POST("/menu-items", menuCtrl.CreateMenuItem)
	auth.GET("/menu-items", menuCtrl.GetMenuItems)
	auth.PATCH("/menu-items/:id", menuCtrl.UpdateMenuItem)
	auth.DELETE("/menu-items/:id", menuCtrl.DeleteMenuItem)
	return router
}

func TestCreateMenuItem(t *testing.T) {
	db := setupTestDB("menu_create")
	router := setupMenuItemRouter(db)
	owner := createOwner(db, "dono@example.com")
	waiter := createWaiter(db, "garcom@example.com", owner)
	bar := createBar(db, owner, "Central")

	w := doRequest(router, "POST", "/menu-items", map[string]interface{}{
		"barId": bar.ID,
		"name":  "Chopp",
		"price": 12.50,
	}, owner)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 12.50, dataOf(w)["price"])

	// Duplicata ignora caixa
	w = doRequest(router, "POST", "/menu-items", map[string]interface{}{
		"barId": bar.ID,
		"name":  "CHOPP",
		"price": 14.00,
	}, owner)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Já existe um item com esse nome no bar", parseBody(w)["message"])

	// Preço negativo
	w = doRequest(router, "POST", "/menu-items", map[string]interface{}{
		"barId": bar.ID,
		"name":  "Água",
		"price": -1.00,
	}, owner)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Garçom não mexe no cardápio
	w = doRequest(router, "POST", "/menu-items", map[string]interface{}{
		"barId": bar.ID,
		"name":  "Petisco",
		"price": 20.00,
	}, waiter)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateMenuItem(t *testing.T) {
	db := setupTestDB("menu_update")
	router := setupMenuItemRouter(db)
	owner := createOwner(db, "dono@example.com")
	bar := createBar(db, owner, "Central")
	item := createMenuItem(db, bar, "Chopp", "12.50")
	createMenuItem(db, bar, "Porção", "30.00")

	// Só o preço
	w := doRequest(router, "PATCH", fmt.Sprintf("/menu-items/%d", item.ID), map[string]interface{}{
		"price": 15.00,
	}, owner)
	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(w)
	assert.Equal(t, "Chopp", data["name"])
	assert.Equal(t, 15.00, data["price"])

	// Renomear para nome já usado no bar
	w = doRequest(router, "PATCH", fmt.Sprintf("/menu-items/%d", item.ID), map[string]interface{}{
		"name": "porção",
	}, owner)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteMenuItemHidesFromMenu(t *testing.T) {
	db := setupTestDB("menu_delete")
	router := setupMenuItemRouter(db)
	owner := createOwner(db, "dono@example.com")
	bar := createBar(db, owner, "Central")
	item := createMenuItem(db, bar, "Chopp", "12.50")
	createMenuItem(db, bar, "Porção", "30.00")

	w := doRequest(router, "DELETE", fmt.Sprintf("/menu-items/%d", item.ID), nil, owner)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "GET", fmt.Sprintf("/menu-items?barId=%d", bar.ID), nil, owner)
	assert.Equal(t, http.StatusOK, w.Code)
	items := listOf(w)
	assert.Len(t, items, 1)
	assert.Equal(t, "Porção", items[0].(map[string]interface{})["name"])
}
