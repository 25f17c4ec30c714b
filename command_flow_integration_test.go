package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/comandaonline/comanda-api/models"
	"github.com/comandaonline/comanda-api/router"
	"github.com/comandaonline/comanda-api/utils"
)

func setupIntegrationDB(t *testing.T, name string) *gorm.DB {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Bar{},
		&models.Table{},
		&models.MenuItem{},
		&models.Command{},
		&models.CommandItem{},
		&models.Payment{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func request(r *gin.Engine, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %s", w.Body.String())
	}
	data, _ := resp["data"].(map[string]interface{})
	return data
}

// Fluxo completo de uma noite: dono se cadastra, monta o estabelecimento,
// abre uma comanda, lança consumo e recebe o pagamento que quita e fecha.
func TestCommandLifecycle(t *testing.T) {
	db := setupIntegrationDB(t, "integration")
	r := router.SetupRouter(db)

	// Cadastro e login do dono (rotas públicas, contam no rate limit estrito)
	w := request(r, "POST", "/users/register-owner", "", map[string]interface{}{
		"name":     "Maria",
		"email":    "maria@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = request(r, "POST", "/users/login", "", map[string]interface{}{
		"email":    "maria@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	token := decodeData(t, w)["token"].(string)

	// Estabelecimento, mesa e cardápio
	w = request(r, "POST", "/bars", token, map[string]interface{}{"name": "Bar da Maria"})
	assert.Equal(t, http.StatusCreated, w.Code)
	barID := decodeData(t, w)["id"].(float64)

	w = request(r, "POST", "/tables", token, map[string]interface{}{
		"barId":  barID,
		"number": 1,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	tableID := decodeData(t, w)["id"].(float64)

	w = request(r, "POST", "/menu-items", token, map[string]interface{}{
		"barId": barID,
		"name":  "Chopp",
		"price": 12.50,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	menuItemID := decodeData(t, w)["id"].(float64)

	// Abre a comanda e lança o consumo
	w = request(r, "POST", "/commands", token, map[string]interface{}{
		"tableId": tableID,
		"name":    "Mesa 1",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	commandID := decodeData(t, w)["id"].(float64)

	w = request(r, "POST", "/command-items", token, map[string]interface{}{
		"commandId":  commandID,
		"menuItemId": menuItemID,
		"quantity":   4,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Pagamento integral: a comanda fecha sozinha
	w = request(r, "POST", "/payments", token, map[string]interface{}{
		"commandId":   commandID,
		"amount":      50.00,
		"paymentType": "PIX",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	w = request(r, "GET", fmt.Sprintf("/commands?barId=%.0f&status=CLOSED", barID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	closed := resp["data"].([]interface{})
	assert.Len(t, closed, 1)
	command := closed[0].(map[string]interface{})
	assert.Equal(t, commandID, command["id"])
	assert.Equal(t, "CLOSED", command["status"])
	assert.Equal(t, float64(50), command["total"])
	assert.Equal(t, float64(0), command["remaining_amount"])

	// O relatório da semana reflete a noite
	w = request(r, "GET", fmt.Sprintf("/commands/reports?barId=%.0f&period=week", barID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	report := decodeData(t, w)
	assert.Equal(t, float64(1), report["totalCommands"])
	assert.Equal(t, float64(50), report["totalRevenue"])
	assert.Equal(t, float64(4), report["itemsSold"])
}

// O limitador global por IP fica na frente de todas as rotas: uma rajada
// acima de 50 requisições na mesma janela tem que levar 429.
func TestGlobalRateLimiterThrottlesFlood(t *testing.T) {
	db := setupIntegrationDB(t, "ratelimit")
	r := router.SetupRouter(db)

	var lastCode int
	throttled := 0
	for i := 0; i < 55; i++ {
		w := request(r, "GET", "/ping", "", nil)
		lastCode = w.Code
		if w.Code == http.StatusTooManyRequests {
			throttled++
		}
	}

	assert.Equal(t, http.StatusTooManyRequests, lastCode)
	assert.Equal(t, 5, throttled)
}
