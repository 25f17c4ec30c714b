package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/comandaonline/comanda-api/models"
	"github.com/comandaonline/comanda-api/utils"
)

// setupTestDB abre um banco sqlite em memória exclusivo do teste. O nome
// precisa ser único: cache=shared faz conexões com o mesmo nome dividirem
// o mesmo banco, e testes não podem vazar estado entre si.
func setupTestDB(name string) *gorm.DB {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
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
		panic(err)
	}
	return db
}

func money(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func createOwner(db *gorm.DB, email string) *models.User {
	return createUser(db, email, models.RoleOwner, nil)
}

func createWaiter(db *gorm.DB, email string, owner *models.User) *models.User {
	return createUser(db, email, models.RoleWaiter, &owner.ID)
}

func createUser(db *gorm.DB, email, role string, ownerID *uint) *models.User {
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	user := models.User{
		Name:     email,
		Email:    email,
		Password: string(hashed),
		Role:     role,
		OwnerID:  ownerID,
	}
	if err := db.Create(&user).Error; err != nil {
		panic(err)
	}
	return &user
}

func createBar(db *gorm.DB, owner *models.User, name string) *models.Bar {
	bar := models.Bar{Name: name, OwnerID: owner.ID}
	if err := db.Create(&bar).Error; err != nil {
		panic(err)
	}
	return &bar
}

func createTable(db *gorm.DB, bar *models.Bar, number int) *models.Table {
	table := models.Table{Number: number, BarID: bar.ID}
	if err := db.Create(&table).Error; err != nil {
		panic(err)
	}
	return &table
}

func createMenuItem(db *gorm.DB, bar *models.Bar, name, price string) *models.MenuItem {
	item := models.MenuItem{Name: name, Price: money(price), BarID: bar.ID}
	if err := db.Create(&item).Error; err != nil {
		panic(err)
	}
	return &item
}

func bearerToken(user *models.User) string {
	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		panic(err)
	}
	return "Bearer " + token
}

// doRequest monta e executa uma requisição JSON contra o router de teste.
// body nil vira requisição sem corpo; as autenticadas levam o header do user.
func doRequest(router *gin.Engine, method, url string, body interface{}, user *models.User) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		buf = bytes.NewBuffer(payload)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", bearerToken(user))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func parseBody(w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		panic(err)
	}
	return resp
}

func dataOf(w *httptest.ResponseRecorder) map[string]interface{} {
	return parseBody(w)["data"].(map[string]interface{})
}

func listOf(w *httptest.ResponseRecorder) []interface{} {
	return parseBody(w)["data"].([]interface{})
}
