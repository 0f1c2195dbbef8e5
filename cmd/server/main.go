package main

import (
	"log"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"

	"onrise_back_end/internal/checkout"
	"onrise_back_end/internal/config"
	"onrise_back_end/internal/coupon"
	"onrise_back_end/internal/database"
	checkouthandler "onrise_back_end/internal/handlers/checkout"
	couponhandler "onrise_back_end/internal/handlers/coupon"
	orderhandler "onrise_back_end/internal/handlers/order"
	"onrise_back_end/internal/mailer"
	"onrise_back_end/internal/payment"
	"onrise_back_end/internal/routes"
	"onrise_back_end/internal/services"
	"onrise_back_end/internal/store"
)

func main() {
	config.Load()

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		log.Fatal("❌ Impossible d'initialiser Stripe : clé manquante")
	}
	log.Println("✅ Stripe initialisé")

	database.ConnectDatabases()
	services.ConnectMinio()

	// Assemblage du cœur checkout
	orderStore := store.NewScyllaOrderStore()
	couponStore := store.NewScyllaCouponStore()
	couponService := coupon.NewService(couponStore)
	checkoutService := checkout.NewService(payment.NewStripeProvider(), orderStore, couponService, mailer.New())

	r := gin.Default()
	r.Use(cors.New(corsConfig()))

	routes.RegisterRoutes(r, routes.Handlers{
		Checkout: checkouthandler.NewHandler(checkoutService),
		Coupons:  couponhandler.NewHandler(couponStore, couponService),
		Orders:   orderhandler.NewHandler(orderStore),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur OneRise lancé sur le port", port)
	r.Run(":" + port)
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.AllowOrigins = strings.Split(origins, ",")
	} else {
		cfg.AllowOrigins = []string{"http://localhost:3000"}
	}
	return cfg
}
