package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/comandaonline/comanda-api/middlewares"
	"github.com/comandaonline/comanda-api/models"
	"github.com/comandaonline/comanda-api/utils"
)

type MenuItemController struct {
	DB *gorm.DB
}

func NewMenuItemController(db *gorm.DB) *MenuItemController {
	return &MenuItemController{DB: db}
}

// CreateMenuItem -> apenas o dono; nome único por bar, sem diferenciar caixa
func (mc *MenuItemController) CreateMenuItem(c *gin.Context) {
	actor := middlewares.CurrentUser(c)
	if actor.Role != models.RoleOwner {
		utils.RespondError(c, http.StatusForbidden, errors.New("Apenas administradores podem adicionar itens ao menu"))
		return
	}

	var req struct {
		BarID uint            `json:"barId" binding:"required"`
		Name  string          `json:"name" binding:"required"`
		Price decimal.Decimal `json:"price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Nome, preço e ID do bar são obrigatórios"))
		return
	}

	if req.Price.IsNegative() {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Preço deve ser um número válido"))
		return
	}

	var bar models.Bar
	if err := mc.DB.First(&bar, req.BarID).Error; err != nil || bar.OwnerID != actor.ID {
		utils.RespondError(c, http.StatusNotFound, errors.New("Bar não encontrado ou acesso negado"))
		return
	}

	var existing models.MenuItem
	if err := mc.DB.Where("bar_id = ? AND LOWER(name) = LOWER(?)", bar.ID, req.Name).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("Já existe um item com esse nome no bar"))
		return
	}

	item := models.MenuItem{
		Name:  req.Name,
		Price: req.Price,
		BarID: bar.ID,
	}
	if err := mc.DB.Create(&item).Error; err != nil {
		utils.ErrorLogger.Printf("create menu item: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao criar item do cardápio"))
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Item do cardápio criado", item)
}

// GetMenuItems -> cardápio ativo de um bar, visível para dono e equipe
func (mc *MenuItemController) GetMenuItems(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	barID, err := strconv.ParseUint(c.Query("barId"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("ID do bar é obrigatório"))
		return
	}

	var bar models.Bar
	if err := mc.DB.First(&bar, barID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Bar não encontrado"))
		return
	}

	if !CanAccessBar(actor, bar.OwnerID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("Acesso negado ao cardápio desse estabelecimento"))
		return
	}

	var items []models.MenuItem
	if err := mc.DB.Where("bar_id = ?", bar.ID).Order("name asc").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao buscar itens do cardápio"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Lista de itens do cardápio", items)
}

// UpdateMenuItem -> atualiza nome e/ou preço de um item
func (mc *MenuItemController) UpdateMenuItem(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("ID do item inválido"))
		return
	}

	var req struct {
		Name  *string          `json:"name"`
		Price *decimal.Decimal `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Corpo da requisição inválido"))
		return
	}

	var item models.MenuItem
	if err := mc.DB.Preload("Bar").First(&item, itemID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Item do cardápio não encontrado"))
		return
	}

	if actor.Role != models.RoleOwner || item.Bar.OwnerID != actor.ID {
		utils.RespondError(c, http.StatusForbidden, errors.New("Apenas o dono pode alterar o cardápio"))
		return
	}

	if req.Name != nil {
		var duplicate models.MenuItem
		if err := mc.DB.Where("bar_id = ? AND LOWER(name) = LOWER(?) AND id <> ?", item.BarID, *req.Name, item.ID).First(&duplicate).Error; err == nil {
			utils.RespondError(c, http.StatusConflict, errors.New("Já existe um item com esse nome no bar"))
			return
		}
		item.Name = *req.Name
	}

	if req.Price != nil {
		if req.Price.IsNegative() {
			utils.RespondError(c, http.StatusBadRequest, errors.New("Preço deve ser um número válido"))
			return
		}
		item.Price = *req.Price
	}

	if err := mc.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao atualizar item do cardápio"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Item do cardápio atualizado", item)
}

// DeleteMenuItem -> soft delete; comandas antigas seguem precificadas
func (mc *MenuItemController) DeleteMenuItem(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("ID do item inválido"))
		return
	}

	var item models.MenuItem
	if err := mc.DB.Preload("Bar").First(&item, itemID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Item do cardápio não encontrado"))
		return
	}

	if actor.Role != models.RoleOwner || item.Bar.OwnerID != actor.ID {
		utils.RespondError(c, http.StatusForbidden, errors.New("Apenas o dono pode alterar o cardápio"))
		return
	}

	if err := mc.DB.Delete(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao excluir item do cardápio"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Item excluído com sucesso", nil)
}
