package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/comandaonline/comanda-api/middlewares"
	"github.com/comandaonline/comanda-api/models"
	"github.com/comandaonline/comanda-api/utils"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// RegisterOwner -> auto-cadastro de dono de bar
func (uc *UserController) RegisterOwner(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Email e senha são obrigatórios"))
		return
	}

	var existing models.User
	if err := uc.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("Já existe um usuário com esse e-mail"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro no servidor"))
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     models.RoleOwner,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		utils.ErrorLogger.Printf("register owner: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro no servidor"))
		return
	}

	utils.InfoLogger.Printf("Novo dono cadastrado: %s", user.Email)
	utils.RespondJSON(c, http.StatusCreated, "Usuário cadastrado", user)
}

// RegisterWaiter -> dono cadastra garçom ou gerente do seu estabelecimento
func (uc *UserController) RegisterWaiter(c *gin.Context) {
	actor := middlewares.CurrentUser(c)
	if actor.Role != models.RoleOwner {
		utils.RespondError(c, http.StatusForbidden, errors.New("Apenas donos de bar podem criar garçons"))
		return
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Email e senha são obrigatórios"))
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleWaiter
	}
	if role != models.RoleWaiter && role != models.RoleManager {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Role deve ser WAITER ou MANAGER"))
		return
	}

	var existing models.User
	if err := uc.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("Já existe um usuário com esse e-mail"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro no servidor"))
		return
	}

	waiter := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     role,
		OwnerID:  &actor.ID,
	}
	if err := uc.DB.Create(&waiter).Error; err != nil {
		utils.ErrorLogger.Printf("register waiter: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao criar garçom"))
		return
	}

	utils.InfoLogger.Printf("Novo %s cadastrado por %s: %s", role, actor.Email, waiter.Email)
	utils.RespondJSON(c, http.StatusCreated, "Garçom cadastrado", waiter)
}

// Login -> valida credenciais e devolve o JWT
func (uc *UserController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Email e senha são obrigatórios"))
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("Credenciais inválidas"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("Credenciais inválidas"))
		return
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		utils.ErrorLogger.Printf("login: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro no servidor"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login realizado", gin.H{"token": token})
}

// CheckToken -> resolve um token para o usuário vivo correspondente
func (uc *UserController) CheckToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Token não fornecido"))
		return
	}

	claims, err := utils.ParseToken(req.Token)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("Token inválido ou expirado"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, claims.UserID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Usuário não encontrado"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Token válido", gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}
