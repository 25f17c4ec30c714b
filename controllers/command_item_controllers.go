package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/comandaonline/comanda-api/middlewares"
	"github.com/comandaonline/comanda-api/models"
	"github.com/comandaonline/comanda-api/utils"
)

type CommandItemController struct {
	DB *gorm.DB
}

func NewCommandItemController(db *gorm.DB) *CommandItemController {
	return &CommandItemController{DB: db}
}

// recomputeTotals recarrega itens ativos e pagamentos da comanda e grava os
// três totais de uma vez. Sempre chamado dentro da transação da mutação,
// nunca a partir de estado vindo do cliente.
func recomputeTotals(tx *gorm.DB, command *models.Command) error {
	var items []models.CommandItem
	// Unscoped no MenuItem: item removido do cardápio continua precificando
	// comandas que o referenciam.
	if err := tx.Preload("MenuItem", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("command_id = ?", command.ID).Find(&items).Error; err != nil {
		return err
	}

	var payments []models.Payment
	if err := tx.Where("command_id = ?", command.ID).Find(&payments).Error; err != nil {
		return err
	}

	total, paid, remaining := models.RecalculateTotals(items, payments)
	command.Total = total
	command.PaidAmount = paid
	command.RemainingAmount = remaining
	return tx.Save(command).Error
}

// AddItem -> lança um item do cardápio na comanda e recalcula o total
func (ic *CommandItemController) AddItem(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	var req struct {
		CommandID  uint   `json:"commandId" binding:"required"`
		MenuItemID uint   `json:"menuItemId" binding:"required"`
		Quantity   int    `json:"quantity" binding:"required"`
		Notes      string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Campos obrigatórios: commandId, menuItemId, quantity"))
		return
	}

	if req.Quantity < 1 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Quantidade deve ser maior que zero"))
		return
	}

	tx := ic.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao adicionar item à comanda"))
		return
	}

	// O status é checado dentro da transação, segurando a linha da comanda:
	// um fechamento concorrente não pode passar entre a checagem e o insert.
	var command models.Command
	if err := lockForUpdate(tx).Preload("Bar").First(&command, req.CommandID).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusNotFound, errors.New("Comanda não encontrada"))
		return
	}

	if command.IsClosed() {
		tx.Rollback()
		utils.RespondError(c, http.StatusBadRequest, errors.New("Comanda já está fechada"))
		return
	}

	if !CanAccessBar(actor, command.Bar.OwnerID) {
		tx.Rollback()
		utils.RespondError(c, http.StatusForbidden, errors.New("Acesso negado, a comanda não pertence a um bar que você tem acesso."))
		return
	}

	var menuItem models.MenuItem
	if err := tx.Where("id = ? AND bar_id = ?", req.MenuItemID, command.BarID).First(&menuItem).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusNotFound, errors.New("Item do cardápio não encontrado"))
		return
	}

	item := models.CommandItem{
		CommandID:  command.ID,
		MenuItemID: menuItem.ID,
		Quantity:   req.Quantity,
		Notes:      req.Notes,
		AddedByID:  actor.ID,
	}
	if err := tx.Create(&item).Error; err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("add command item: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao adicionar item à comanda"))
		return
	}

	if err := recomputeTotals(tx, &command); err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("recompute totals: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao adicionar item à comanda"))
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao adicionar item à comanda"))
		return
	}

	item.MenuItem = menuItem
	utils.RespondJSON(c, http.StatusCreated, "Item adicionado", item)
}

// GetItems -> itens ativos de uma comanda
func (ic *CommandItemController) GetItems(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	commandID, err := strconv.ParseUint(c.Query("commandId"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Parâmetro commandId é obrigatório"))
		return
	}

	var command models.Command
	if err := ic.DB.Preload("Bar").First(&command, commandID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Comanda não encontrada"))
		return
	}

	if !CanAccessBar(actor, command.Bar.OwnerID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("Acesso negado"))
		return
	}

	var items []models.CommandItem
	if err := ic.DB.Where("command_id = ?", command.ID).
		Preload("MenuItem", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("AddedBy").
		Order("created_at asc").
		Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao buscar itens"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Itens da comanda", items)
}

// UpdateItem -> altera quantidade/observações de um item de comanda aberta
func (ic *CommandItemController) UpdateItem(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	itemID, err := strconv.ParseUint(c.Query("itemId"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Parâmetro itemId é obrigatório"))
		return
	}

	var req struct {
		Quantity *int    `json:"quantity"`
		Notes    *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Corpo da requisição inválido"))
		return
	}

	tx := ic.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao atualizar item"))
		return
	}

	var item models.CommandItem
	if err := tx.First(&item, itemID).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusNotFound, errors.New("Item não encontrado"))
		return
	}

	var command models.Command
	if err := lockForUpdate(tx).Preload("Bar").First(&command, item.CommandID).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusNotFound, errors.New("Comanda não encontrada"))
		return
	}

	if command.IsClosed() {
		tx.Rollback()
		utils.RespondError(c, http.StatusBadRequest, errors.New("Comanda já está fechada"))
		return
	}

	if !CanAccessBar(actor, command.Bar.OwnerID) {
		tx.Rollback()
		utils.RespondError(c, http.StatusForbidden, errors.New("Acesso negado"))
		return
	}

	if req.Quantity != nil {
		if *req.Quantity < 1 {
			tx.Rollback()
			utils.RespondError(c, http.StatusBadRequest, errors.New("Quantidade deve ser maior que zero"))
			return
		}
		item.Quantity = *req.Quantity
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}

	if err := tx.Save(&item).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao atualizar item"))
		return
	}

	if err := recomputeTotals(tx, &command); err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("recompute totals: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao atualizar item"))
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao atualizar item"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Item atualizado", item)
}

// RemoveItem -> soft delete do item e recálculo do total
func (ic *CommandItemController) RemoveItem(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	var req struct {
		ItemID    uint `json:"itemId" binding:"required"`
		CommandID uint `json:"commandId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Campos obrigatórios: itemId e commandId"))
		return
	}

	tx := ic.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao deletar item"))
		return
	}

	var item models.CommandItem
	if err := tx.Where("id = ? AND command_id = ?", req.ItemID, req.CommandID).First(&item).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusNotFound, errors.New("Item não encontrado ou não pertence à comanda"))
		return
	}

	var command models.Command
	if err := lockForUpdate(tx).Preload("Bar").First(&command, item.CommandID).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusNotFound, errors.New("Comanda não encontrada"))
		return
	}

	if command.IsClosed() {
		tx.Rollback()
		utils.RespondError(c, http.StatusBadRequest, errors.New("Comanda já está fechada"))
		return
	}

	if !CanAccessBar(actor, command.Bar.OwnerID) {
		tx.Rollback()
		utils.RespondError(c, http.StatusForbidden, errors.New("Acesso negado"))
		return
	}

	if err := tx.Delete(&item).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao deletar item"))
		return
	}

	if err := recomputeTotals(tx, &command); err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("recompute totals: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao deletar item"))
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao deletar item"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Item excluído com sucesso", nil)
}
