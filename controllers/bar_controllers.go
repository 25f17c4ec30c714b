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

type BarController struct {
	DB *gorm.DB
}

func NewBarController(db *gorm.DB) *BarController {
	return &BarController{DB: db}
}

// CreateBar -> apenas OWNER; no máximo um bar ativo com o mesmo nome por dono
func (bc *BarController) CreateBar(c *gin.Context) {
	actor := middlewares.CurrentUser(c)
	if actor.Role != models.RoleOwner {
		utils.RespondError(c, http.StatusForbidden, errors.New("Apenas donos podem criar bares"))
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Nome do bar é obrigatório"))
		return
	}

	var existing models.Bar
	if err := bc.DB.Where("name = ? AND owner_id = ?", req.Name, actor.ID).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("Você já possui um bar com esse nome"))
		return
	}

	bar := models.Bar{
		Name:    req.Name,
		OwnerID: actor.ID,
	}
	if err := bc.DB.Create(&bar).Error; err != nil {
		utils.ErrorLogger.Printf("create bar: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao criar o bar"))
		return
	}

	utils.InfoLogger.Printf("Bar criado: %s (dono=%d)", bar.Name, bar.OwnerID)
	utils.RespondJSON(c, http.StatusCreated, "Bar criado", bar)
}

// GetBars -> dono vê os próprios bares, garçom/gerente vê os bares do seu dono
func (bc *BarController) GetBars(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	var ownerID uint
	switch {
	case actor.Role == models.RoleOwner:
		ownerID = actor.ID
	case actor.IsStaff() && actor.OwnerID != nil:
		ownerID = *actor.OwnerID
	default:
		utils.RespondError(c, http.StatusForbidden, errors.New("Permissão negada para acessar os bares"))
		return
	}

	var bars []models.Bar
	if err := bc.DB.Where("owner_id = ?", ownerID).Find(&bars).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao buscar bares"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Lista de bares", bars)
}

// UpdateBar -> renomeia um bar do dono
func (bc *BarController) UpdateBar(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	var req struct {
		BarID uint   `json:"barId" binding:"required"`
		Name  string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Campos obrigatórios: barId, name"))
		return
	}

	var bar models.Bar
	if err := bc.DB.First(&bar, req.BarID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Bar não encontrado"))
		return
	}

	if actor.Role != models.RoleOwner || bar.OwnerID != actor.ID {
		utils.RespondError(c, http.StatusForbidden, errors.New("Apenas o dono pode alterar o bar"))
		return
	}

	var duplicate models.Bar
	if err := bc.DB.Where("name = ? AND owner_id = ? AND id <> ?", req.Name, actor.ID, bar.ID).First(&duplicate).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("Você já possui um bar com esse nome"))
		return
	}

	bar.Name = req.Name
	if err := bc.DB.Save(&bar).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao atualizar o bar"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Bar atualizado", bar)
}

// DeleteBar -> soft delete, apenas o dono
func (bc *BarController) DeleteBar(c *gin.Context) {
	actor := middlewares.CurrentUser(c)

	barID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("ID do bar inválido"))
		return
	}

	var bar models.Bar
	if err := bc.DB.First(&bar, barID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Bar não encontrado"))
		return
	}

	if actor.Role != models.RoleOwner || bar.OwnerID != actor.ID {
		utils.RespondError(c, http.StatusForbidden, errors.New("Apenas o dono pode excluir o bar"))
		return
	}

	if err := bc.DB.Delete(&bar).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao excluir o bar"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Bar excluído com sucesso", nil)
}
