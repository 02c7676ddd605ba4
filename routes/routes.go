package routes

import (
	"time"

	"salonpro-checkout/config"
	"salonpro-checkout/controllers"
	"salonpro-checkout/services/coupon"
	"salonpro-checkout/services/discount"
	"salonpro-checkout/services/events"
	"salonpro-checkout/services/invoice"
	"salonpro-checkout/services/loyalty"
	"salonpro-checkout/services/visit"
	"salonpro-checkout/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators built in main.
type Deps struct {
	DB        *gorm.DB
	Allocator invoice.Allocator
	Bus       *events.Bus
}

func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.RequestLogger(cfg.SlowRequest))

	coupons := coupon.NewStore(deps.DB)
	validator := coupon.NewValidator(coupons)

	authController := controllers.AuthController{
		Secret: cfg.JWTSecret,
		Expiry: time.Duration(cfg.JWTExpiryHours) * time.Hour,
	}
	couponController := controllers.CouponController{Store: coupons, Validator: validator}
	visitController := controllers.VisitController{Visits: visit.NewService(deps.DB), Bus: deps.Bus}
	checkoutController := controllers.CheckoutController{
		Builder: invoice.NewBuilder(deps.DB, validator, coupons, discount.NewGormMembershipLookup(deps.DB), deps.Allocator),
		Bus:     deps.Bus,
	}
	loyaltyController := controllers.LoyaltyController{Ledger: loyalty.NewLedger(deps.DB)}
	reportController := controllers.ReportController{}

	requireAuth := utils.AuthMiddleware(cfg.JWTSecret)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/me", requireAuth, controllers.Me)
	}

	api := r.Group("/api")
	api.Use(requireAuth)
	{
		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
			customers.GET("/:id/points-history", loyaltyController.History)
			customers.POST("/:id/points-adjustments", loyaltyController.Adjust)
		}

		// Service catalog routes
		services := api.Group("/services")
		{
			services.POST("", controllers.CreateService)
			services.GET("", controllers.GetServices)
			services.GET("/:id", controllers.GetService)
			services.PUT("/:id", controllers.UpdateService)
			services.DELETE("/:id", controllers.DeleteService)
		}

		memberships := api.Group("/memberships")
		{
			memberships.POST("", controllers.CreateMembership)
			memberships.GET("", controllers.GetMemberships)
		}

		couponRoutes := api.Group("/coupons")
		{
			couponRoutes.POST("", couponController.Create)
			couponRoutes.GET("", couponController.List)
			couponRoutes.POST("/validate", couponController.Validate)
			couponRoutes.GET("/:code", couponController.Get)
			couponRoutes.DELETE("/:code", couponController.Deactivate)
		}

		visits := api.Group("/visits")
		{
			visits.POST("", visitController.CheckIn)
			visits.GET("", visitController.List)
			visits.GET("/stream", visitController.Stream)
			visits.GET("/:id", visitController.Get)
			visits.POST("/:id/items", visitController.AddItem)
			visits.DELETE("/:id/items/:index", visitController.RemoveItem)
			visits.POST("/:id/items/:index/complete", visitController.CompleteItem)
			visits.POST("/:id/start", visitController.Start)
			visits.POST("/:id/ready", visitController.Ready)
			visits.POST("/:id/checkout", checkoutController.Checkout)
		}

		// Invoices are written only by checkout
		invoices := api.Group("/invoices")
		{
			invoices.GET("", controllers.GetInvoices)
			invoices.GET("/:id", controllers.GetInvoice)
		}

		api.GET("/reports", reportController.GetReportAnalytics)
		api.GET("/dashboard", controllers.GetDashboardOverview)

		profile := api.Group("/profile")
		{
			profile.GET("", controllers.GetProfile)
			profile.PUT("/update-salon", controllers.UpdateProfile)
			profile.PUT("/update-notifications", controllers.UpdateNotificationSettings)
		}
	}

	return r
}
