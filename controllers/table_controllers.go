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

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// CreateTable -> adiciona uma mesa ao bar; número único enquanto ativa
func (tc *TableController) CreateTable(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	var req struct {
		BarID  uint `json:"barId" binding:"required"`
		Number int  `json:"number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("ID do bar e número da mesa são obrigatórios"))
		return
	}

	if req.Number < 1 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Numero da mesa deve ser um número válido"))
		return
	}

	tx := tc.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao criar mesa"))
		return
	}

	// O lock na linha do bar serializa criações concorrentes: o índice
	// composto não é único porque mesas com soft delete liberam o número.
	var bar models.Bar
	if err := lockForUpdate(tx).First(&bar, req.BarID).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusNotFound, errors.New("Bar não encontrado"))
		return
	}

	if !CanAccessBar(actor, bar.OwnerID) {
		tx.Rollback()
		utils.RespondError(c, http.StatusForbidden, errors.New("Acesso negado para criar mesas nesse estabelecimento"))
		return
	}

	var existing models.Table
	if err := tx.Where("number = ? AND bar_id = ?", req.Number, bar.ID).First(&existing).Error; err == nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusConflict, errors.New("Mesa ja existe nesse estabelecimento"))
		return
	}

	table := models.Table{
		Number: req.Number,
		BarID:  bar.ID,
	}
	if err := tx.Create(&table).Error; err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("create table: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao criar mesa"))
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao criar mesa"))
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Mesa criada", table)
}

// GetTables -> lista as mesas ativas de um bar
func (tc *TableController) GetTables(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	barID, err := strconv.ParseUint(c.Query("barId"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("ID do estabelecimento é obrigatório"))
		return
	}

	var bar models.Bar
	if err := tc.DB.First(&bar, barID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Bar não encontrado"))
		return
	}

	if !CanAccessBar(actor, bar.OwnerID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("Acesso negado às mesas desse estabelecimento"))
		return
	}

	var tables []models.Table
	if err := tc.DB.Where("bar_id = ?", bar.ID).Order("number asc").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao buscar mesas"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Lista de mesas", tables)
}

// DeleteTable -> soft delete de uma mesa
func (tc *TableController) DeleteTable(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	tableID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("ID da mesa inválido"))
		return
	}

	var table models.Table
	if err := tc.DB.Preload("Bar").First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Mesa não encontrada"))
		return
	}

	if !CanAccessBar(actor, table.Bar.OwnerID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("Acesso negado às mesas desse estabelecimento"))
		return
	}

	if err := tc.DB.Delete(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao excluir mesa"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Mesa excluída com sucesso", nil)
}
