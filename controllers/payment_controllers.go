package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/comandaonline/comanda-api/metrics"
	"github.com/comandaonline/comanda-api/middlewares"
	"github.com/comandaonline/comanda-api/models"
	"github.com/comandaonline/comanda-api/utils"
)

type PaymentController struct {
	DB *gorm.DB
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{DB: db}
}

// CreatePayment -> registra um pagamento parcial ou total. Pagamento acima
// do saldo restante é rejeitado; quando o saldo zera e a comanda ainda está
// aberta, ela fecha sozinha com o pagador como responsável.
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	var req struct {
		CommandID   uint            `json:"commandId" binding:"required"`
		Amount      decimal.Decimal `json:"amount" binding:"required"`
		PaymentType string          `json:"paymentType"`
		Note        string          `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Campos obrigatórios: commandId, amount"))
		return
	}

	if !req.Amount.IsPositive() {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Valor do pagamento deve ser maior que zero"))
		return
	}

	paymentType := req.PaymentType
	if paymentType == "" {
		paymentType = models.PaymentCash
	}
	if !models.ValidPaymentType(paymentType) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Tipo de pagamento inválido"))
		return
	}

	tx := pc.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao registrar pagamento"))
		return
	}

	var command models.Command
	if err := lockForUpdate(tx).Preload("Bar").First(&command, req.CommandID).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusNotFound, errors.New("Comanda não encontrada"))
		return
	}

	if !CanAccessBar(actor, command.Bar.OwnerID) {
		tx.Rollback()
		utils.RespondError(c, http.StatusForbidden, errors.New("Acesso negado à comanda"))
		return
	}

	if req.Amount.GreaterThan(command.RemainingAmount) {
		tx.Rollback()
		utils.RespondError(c, http.StatusBadRequest, errors.New("Valor do pagamento excede o saldo restante da comanda"))
		return
	}

	payment := models.Payment{
		CommandID:   command.ID,
		Amount:      req.Amount,
		PaymentType: paymentType,
		Note:        req.Note,
		PaidByID:    actor.ID,
	}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("create payment: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao registrar pagamento"))
		return
	}

	if err := recomputeTotals(tx, &command); err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("recompute totals: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao registrar pagamento"))
		return
	}

	// Rechecagem pós-recálculo: o saldo gravado na comanda pode estar
	// defasado em relação aos pagamentos reais, e o saldo nunca pode
	// ficar negativo.
	if command.RemainingAmount.IsNegative() {
		tx.Rollback()
		utils.RespondError(c, http.StatusBadRequest, errors.New("Valor do pagamento excede o saldo restante da comanda"))
		return
	}

	autoClosed := false
	if !command.RemainingAmount.IsPositive() && command.Status == models.CommandOpen {
		command.Status = models.CommandClosed
		command.ClosedByID = &actor.ID
		if err := tx.Save(&command).Error; err != nil {
			tx.Rollback()
			utils.ErrorLogger.Printf("auto close command: %v", err)
			utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao registrar pagamento"))
			return
		}
		autoClosed = true
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao registrar pagamento"))
		return
	}

	metrics.PaymentsRecordedCounter.WithLabelValues(paymentType).Inc()
	if autoClosed {
		metrics.RecordCommandClosed("auto")
		utils.InfoLogger.Printf("Comanda #%d quitada e fechada por %s (%s)", command.ID, actor.Email, utils.FormatCurrencyBRL(payment.Amount))
	} else {
		utils.InfoLogger.Printf("Pagamento de %s na comanda #%d por %s", utils.FormatCurrencyBRL(payment.Amount), command.ID, actor.Email)
	}

	utils.RespondJSON(c, http.StatusCreated, "Pagamento registrado", payment)
}

// GetPayments -> pagamentos de uma comanda, do mais recente para o mais antigo
func (pc *PaymentController) GetPayments(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	commandID, err := strconv.ParseUint(c.Query("commandId"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Parâmetro commandId é obrigatório"))
		return
	}

	var command models.Command
	if err := pc.DB.Preload("Bar").First(&command, commandID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Comanda não encontrada"))
		return
	}

	if !CanAccessBar(actor, command.Bar.OwnerID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("Acesso negado"))
		return
	}

	var payments []models.Payment
	if err := pc.DB.Where("command_id = ?", command.ID).
		Preload("PaidBy").
		Order("created_at desc").
		Find(&payments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao buscar pagamentos"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Pagamentos da comanda", payments)
}
