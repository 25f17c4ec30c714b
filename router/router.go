package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/comandaonline/comanda-api/controllers"
	"github.com/comandaonline/comanda-api/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	// Registrado antes de qualquer rota: o gin congela a cadeia de handlers
	// de cada rota no momento do registro, então um Use() tardio não roda.
	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.MetricsMiddleware())

	// Inicialização dos controllers
	userCtrl := controllers.NewUserController(db)
	barCtrl := controllers.NewBarController(db)
	tableCtrl := controllers.NewTableController(db)
	menuItemCtrl := controllers.NewMenuItemController(db)
	commandCtrl := controllers.NewCommandController(db)
	itemCtrl := controllers.NewCommandItemController(db)
	paymentCtrl := controllers.NewPaymentController(db)
	reportCtrl := controllers.NewReportController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rate limiter para login/registro
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/users/register-owner", userCtrl.RegisterOwner)
		public.POST("/users/login", userCtrl.Login)
		public.POST("/users/check-token", userCtrl.CheckToken)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware(db))
	{
		// USERS
		auth.POST("/users/register-waiter", userCtrl.RegisterWaiter)

		// BARS
		auth.POST("/bars", barCtrl.CreateBar)
		auth.GET("/bars", barCtrl.GetBars)
		auth.PUT("/bars", barCtrl.UpdateBar)
		auth.DELETE("/bars/:id", barCtrl.DeleteBar)

		// TABLES
		auth.POST("/tables", tableCtrl.CreateTable)
		auth.GET("/tables", tableCtrl.GetTables)
		auth.DELETE("/tables/:id", tableCtrl.DeleteTable)

		// MENU ITEMS
		auth.POST("/menu-items", menuItemCtrl.CreateMenuItem)
		auth.GET("/menu-items", menuItemCtrl.GetMenuItems)
		auth.PATCH("/menu-items/:id", menuItemCtrl.UpdateMenuItem)
		auth.DELETE("/menu-items/:id", menuItemCtrl.DeleteMenuItem)

		// COMMANDS
		auth.POST("/commands", commandCtrl.CreateCommand)
		auth.GET("/commands", commandCtrl.GetCommands)
		auth.PATCH("/commands", commandCtrl.CloseCommand)

		// COMMAND ITEMS
		auth.POST("/command-items", itemCtrl.AddItem)
		auth.GET("/command-items", itemCtrl.GetItems)
		auth.PATCH("/command-items", itemCtrl.UpdateItem)
		auth.DELETE("/command-items", itemCtrl.RemoveItem)

		// PAYMENTS
		auth.POST("/payments", paymentCtrl.CreatePayment)
		auth.GET("/payments", paymentCtrl.GetPayments)

		// REPORTS (somente dono)
		reports := auth.Group("/")
		reports.Use(middlewares.OwnerOnly())
		{
			reports.GET("/commands/reports", reportCtrl.RevenueReport)
			reports.GET("/reports/full", reportCtrl.FullReport)
			reports.GET("/waiters/reports", reportCtrl.WaitersReport)
		}
	}

	return r
}
