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
	"github.com/comandaonline/comanda-api/models"
)

func setupCommandItemRouter(db *gorm.DB) *gin.Engine {
	router := gin.Default()
	commandCtrl := controllers.NewCommandController(db)
	itemCtrl := controllers.NewCommandItemController(db)

	auth := router.Group("/")
	auth.Use(middlewares.AuthMiddleware(db))
	auth.POST("/commands", commandCtrl.CreateCommand)
	auth.PATCH("/commands", commandCtrl.CloseCommand)
	auth.POST("/command-items", itemCtrl.AddItem)
	auth.GET("/command-items", itemCtrl.GetItems)
	auth.PATCH("/command-items", itemCtrl.UpdateItem)
	auth.DELETE("/command-items", itemCtrl.RemoveItem)
	return router
}

func openCommand(router *gin.Engine, tableID uint, user *models.User) float64 {
	w := doRequest(router, "POST", "/commands", map[string]interface{}{"tableId": tableID}, user)
	return dataOf(w)["id"].(float64)
}

func TestAddItemRecalculatesTotals(t *testing.T) {
	db := setupTestDB("items_add")
	router := setupCommandItemRouter(db)
	owner := createOwner(db, "dono@example.com")
	bar := createBar(db, owner, "Central")
	table := createTable(db, bar, 1)
	chopp := createMenuItem(db, bar, "Chopp", "12.50")
	porcao := createMenuItem(db, bar, "Porção", "30.00")

	commandID := openCommand(router, table.ID, owner)

	w := doRequest(router, "POST", "/command-items", map[string]interface{}{
		"commandId":  commandID,
		"menuItemId": chopp.ID,
		"quantity":   2,
		"notes":      "bem gelado",
	}, owner)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "bem gelado", dataOf(w)["notes"])

	w = doRequest(router, "POST", "/command-items", map[string]interface{}{
		"commandId":  commandID,
		"menuItemId": porcao.ID,
		"quantity":   1,
	}, owner)
	assert.Equal(t, http.StatusCreated, w.Code)

	var command models.Command
	db.First(&command, uint(commandID))
	assert.Equal(t, "55", command.Total.String())
	assert.Equal(t, "55", command.RemainingAmount.String())
	assert.True(t, command.PaidAmount.IsZero())
}

func TestAddItemValidations(t *testing.T) {
	db := setupTestDB("items_validate")
	router := setupCommandItemRouter(db)
	owner := createOwner(db, "dono@example.com")
	bar := createBar(db, owner, "Central")
	otherBar := createBar(db, owner, "Filial")
	table := createTable(db, bar, 1)
	chopp := createMenuItem(db, bar, "Chopp", "12.50")
	foreign := createMenuItem(db, otherBar, "Petisco", "20.00")

	commandID := openCommand(router, table.ID, owner)

	// Quantidade inválida
	w := doRequest(router, "POST", "/command-items", map[string]interface{}{
		"commandId":  commandID,
		"menuItemId": chopp.ID,
		"quantity":   0,
	}, owner)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Item de outro bar não entra na comanda
	w = doRequest(router, "POST", "/command-items", map[string]interface{}{
		"commandId":  commandID,
		"menuItemId": foreign.ID,
		"quantity":   1,
	}, owner)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Item do cardápio não encontrado", parseBody(w)["message"])

	// Comanda fechada não aceita lançamentos
	doRequest(router, "PATCH", fmt.Sprintf("/commands?commandId=%.0f", commandID), nil, owner)
	w = doRequest(router, "POST", "/command-items", map[string]interface{}{
		"commandId":  commandID,
		"menuItemId": chopp.ID,
		"quantity":   1,
	}, owner)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Comanda já está fechada", parseBody(w)["message"])
}

func TestUpdateItemQuantityAndNotes(t *testing.T) {
	db := setupTestDB("items_update")
	router := setupCommandItemRouter(db)
	owner := createOwner(db, "dono@example.com")
	bar := createBar(db, owner, "Central")
	table := createTable(db, bar, 1)
	chopp := createMenuItem(db, bar, "Chopp", "12.50")

	commandID := openCommand(router, table.ID, owner)
	w := doRequest(router, "POST", "/command-items", map[string]interface{}{
		"commandId":  commandID,
		"menuItemId": chopp.ID,
		"quantity":   1,
	}, owner)
	itemID := dataOf(w)["id"].(float64)

	w = doRequest(router, "PATCH", fmt.Sprintf("/command-items?itemId=%.0f", itemID), map[string]interface{}{
		"quantity": 4,
	}, owner)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), dataOf(w)["quantity"])

	var command models.Command
	db.First(&command, uint(commandID))
	assert.Equal(t, "50", command.Total.String())

	// Observação muda sem tocar na quantidade
	w = doRequest(router, "PATCH", fmt.Sprintf("/command-items?itemId=%.0f", itemID), map[string]interface{}{
		"notes": "sem espuma",
	}, owner)
	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(w)
	assert.Equal(t, "sem espuma", data["notes"])
	assert.Equal(t, float64(4), data["quantity"])
}

func TestRemoveItemRecalculatesTotals(t *testing.T) {
	db := setupTestDB("items_remove")
	router := setupCommandItemRouter(db)
	owner := createOwner(db, "dono@example.com")
	bar := createBar(db, owner, "Central")
	table := createTable(db, bar, 1)
	chopp := createMenuItem(db, bar, "Chopp", "12.50")
	porcao := createMenuItem(db, bar, "Porção", "30.00")

	commandID := openCommand(router, table.ID, owner)
	w := doRequest(router, "POST", "/command-items", map[string]interface{}{
		"commandId":  commandID,
		"menuItemId": chopp.ID,
		"quantity":   2,
	}, owner)
	itemID := dataOf(w)["id"].(float64)
	doRequest(router, "POST", "/command-items", map[string]interface{}{
		"commandId":  commandID,
		"menuItemId": porcao.ID,
		"quantity":   1,
	}, owner)

	w = doRequest(router, "DELETE", "/command-items", map[string]interface{}{
		"itemId":    itemID,
		"commandId": commandID,
	}, owner)
	assert.Equal(t, http.StatusOK, w.Code)

	var command models.Command
	db.First(&command, uint(commandID))
	assert.Equal(t, "30", command.Total.String())

	// O item removido some da listagem
	w = doRequest(router, "GET", fmt.Sprintf("/command-items?commandId=%.0f", commandID), nil, owner)
	assert.Len(t, listOf(w), 1)

	// Remover de novo: não encontrado
	w = doRequest(router, "DELETE", "/command-items", map[string]interface{}{
		"itemId":    itemID,
		"commandId": commandID,
	}, owner)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Item não encontrado ou não pertence à comanda", parseBody(w)["message"])
}

func TestDeletedMenuItemStillPricesCommand(t *testing.T) {
	db := setupTestDB("items_deleted_menu")
	router := setupCommandItemRouter(db)
	owner := createOwner(db, "dono@example.com")
	bar := createBar(db, owner, "Central")
	table := createTable(db, bar, 1)
	chopp := createMenuItem(db, bar, "Chopp", "12.50")

	commandID := openCommand(router, table.ID, owner)
	w := doRequest(router, "POST", "/command-items", map[string]interface{}{
		"commandId":  commandID,
		"menuItemId": chopp.ID,
		"quantity":   2,
	}, owner)
	itemID := dataOf(w)["id"].(float64)

	// Prato sai do cardápio, mas a comanda segue precificada
	db.Delete(chopp)

	w = doRequest(router, "PATCH", fmt.Sprintf("/command-items?itemId=%.0f", itemID), map[string]interface{}{
		"quantity": 3,
	}, owner)
	assert.Equal(t, http.StatusOK, w.Code)

	var command models.Command
	db.First(&command, uint(commandID))
	assert.Equal(t, "37.5", command.Total.String())
}
