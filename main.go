package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"brewtiful/internal/config"
	"brewtiful/internal/database"
	"brewtiful/internal/handlers"
	"brewtiful/internal/middleware"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(cfg.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		log.Printf("cart index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureItemIndexes(db); err != nil {
		log.Printf("item index warning: %v", err)
	}

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.GET("/health", handlers.Health(db))

	userAuth := middleware.AuthGuard(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, "User", "Admin")
	adminAuth := middleware.AuthGuard(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, "Admin")

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register(db, cfg))
		auth.POST("/login", handlers.Login(db, cfg))
		auth.POST("/refresh-token", handlers.Refresh(db, cfg))
		auth.POST("/logout", handlers.Logout(db))
		auth.GET("/profile", userAuth, handlers.GetProfile(db))
	}

	category := api.Group("/Category")
	{
		category.GET("", userAuth, handlers.GetCategories(db))
		category.GET("/:id", userAuth, handlers.GetCategory(db))
		category.POST("", adminAuth, handlers.CreateCategory(db))
		category.PUT("/:id", adminAuth, handlers.UpdateCategory(db))
		category.DELETE("/:id", adminAuth, handlers.DeleteCategory(db))
	}

	ingredient := api.Group("/Ingredient", adminAuth)
	{
		ingredient.GET("", handlers.GetIngredients(db))
		ingredient.GET("/:id", handlers.GetIngredient(db))
		ingredient.POST("", handlers.CreateIngredient(db))
		ingredient.PUT("/:id", handlers.UpdateIngredient(db))
		ingredient.DELETE("/:id", handlers.DeleteIngredient(db))
	}

	item := api.Group("/Item")
	{
		item.GET("", userAuth, handlers.GetItems(db))
		item.GET("/:id", userAuth, handlers.GetItem(db))
		item.GET("/category/:categoryId", userAuth, handlers.GetItemsByCategory(db))
		item.POST("", adminAuth, handlers.CreateItem(db))
		item.PUT("/:id", adminAuth, handlers.UpdateItem(db))
		item.DELETE("/:id", adminAuth, handlers.DeleteItem(db))
	}

	cart := api.Group("/Cart", userAuth)
	{
		cart.GET("", handlers.GetCart(db))
		cart.POST("/add", handlers.AddToCart(db))
		cart.POST("/remove", handlers.RemoveFromCart(db))
	}

	orders := api.Group("/Orders")
	{
		orders.POST("/checkout", userAuth, handlers.Checkout(db))
		orders.GET("", userAuth, handlers.GetUserOrders(db))
		orders.GET("/all", adminAuth, handlers.GetAllOrders(db))
		orders.GET("/:id", userAuth, handlers.GetOrder(db))
		orders.PUT("/:id/status", adminAuth, handlers.UpdateOrderStatus(db))
	}

	users := api.Group("/users", adminAuth)
	{
		users.GET("", handlers.GetUsers(db))
		users.DELETE("/:id", handlers.DeleteUser(db))
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
