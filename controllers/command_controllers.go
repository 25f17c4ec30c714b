package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/comandaonline/comanda-api/metrics"
	"github.com/comandaonline/comanda-api/middlewares"
	"github.com/comandaonline/comanda-api/models"
	"github.com/comandaonline/comanda-api/utils"
)

type CommandController struct {
	DB *gorm.DB
}

func NewCommandController(db *gorm.DB) *CommandController {
	return &CommandController{DB: db}
}

// lockForUpdate aplica SELECT ... FOR UPDATE quando o banco suporta.
// SQLite (testes) não aceita a cláusula; a serialização fica por conta do
// lock de escrita global dele.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// CreateCommand -> abre uma comanda na mesa. A checagem de "uma comanda
// aberta por mesa" roda dentro da transação segurando um lock na linha da
// mesa, para que duas aberturas simultâneas não passem as duas.
func (cc *CommandController) CreateCommand(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	var req struct {
		TableID uint   `json:"tableId" binding:"required"`
		Name    string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("O campo tableId é obrigatório"))
		return
	}

	tx := cc.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao abrir comanda"))
		return
	}

	var table models.Table
	if err := lockForUpdate(tx).Preload("Bar").First(&table, req.TableID).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusNotFound, errors.New("Mesa não encontrada"))
		return
	}

	if !CanAccessBar(actor, table.Bar.OwnerID) {
		tx.Rollback()
		utils.RespondError(c, http.StatusForbidden, errors.New("Acesso negado"))
		return
	}

	var open models.Command
	if err := tx.Where("table_id = ? AND status = ?", table.ID, models.CommandOpen).First(&open).Error; err == nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusConflict, errors.New("Já existe uma comanda aberta para essa mesa"))
		return
	}

	command := models.Command{
		TableID:    table.ID,
		BarID:      table.BarID,
		Name:       req.Name,
		Status:     models.CommandOpen,
		PublicHash: utils.NewPublicHash(),
		OpenedByID: actor.ID,
	}
	if err := tx.Create(&command).Error; err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("create command: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao abrir comanda"))
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao abrir comanda"))
		return
	}

	metrics.CommandsOpenedCounter.Inc()
	utils.InfoLogger.Printf("Comanda #%d aberta na mesa %d por %s", command.ID, table.Number, actor.Email)
	utils.RespondJSON(c, http.StatusCreated, "Comanda aberta", command)
}

// GetCommands -> comandas de um bar por status. Abertas saem da mais
// recente para a mais antiga; fechadas, da fechada mais recentemente.
func (cc *CommandController) GetCommands(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	barID, err := strconv.ParseUint(c.Query("barId"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("O parâmetro barId é obrigatório"))
		return
	}

	status := c.DefaultQuery("status", models.CommandOpen)
	if status != models.CommandOpen && status != models.CommandClosed {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Status deve ser OPEN ou CLOSED"))
		return
	}

	var bar models.Bar
	if err := cc.DB.First(&bar, barID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Bar não encontrado"))
		return
	}

	if !CanAccessBar(actor, bar.OwnerID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("Acesso negado"))
		return
	}

	ordering := "created_at desc"
	if status == models.CommandClosed {
		ordering = "updated_at desc"
	}

	var commands []models.Command
	query := cc.DB.Where("bar_id = ? AND status = ?", bar.ID, status).
		Order(ordering).
		Preload("Table").
		Preload("OpenedBy").
		Preload("ClosedBy").
		Preload("Items.AddedBy").
		Preload("Items.MenuItem", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
	if err := query.Find(&commands).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao buscar comandas"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Lista de comandas", commands)
}

// CloseCommand -> fechamento manual. Saldo em aberto não impede o
// fechamento; a dívida fica registrada na comanda.
func (cc *CommandController) CloseCommand(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	commandID, err := strconv.ParseUint(c.Query("commandId"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Parâmetro commandId é obrigatório"))
		return
	}

	tx := cc.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao fechar comanda"))
		return
	}

	// Mesmo lock usado pelas mutações de item: fechar e lançar item na
	// mesma comanda não podem se intercalar.
	var command models.Command
	if err := lockForUpdate(tx).Preload("Bar").First(&command, commandID).Error; err != nil {
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
		utils.RespondError(c, http.StatusForbidden, errors.New("Apenas o dono ou um garçom do estabelecimento pode fechar a comanda"))
		return
	}

	command.Status = models.CommandClosed
	command.ClosedByID = &actor.ID
	if err := tx.Save(&command).Error; err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("close command: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao fechar comanda"))
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao fechar comanda"))
		return
	}

	metrics.RecordCommandClosed("manual")
	utils.InfoLogger.Printf("Comanda #%d fechada por %s (saldo %s)", command.ID, actor.Email, utils.FormatCurrencyBRL(command.RemainingAmount))
	utils.RespondJSON(c, http.StatusOK, "Comanda fechada", command)
}
