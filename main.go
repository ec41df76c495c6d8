package main

import (
	"context"
	"log"
	"strings"

	"chainside-gateway/awsclient"
	"chainside-gateway/chainside"
	"chainside-gateway/config"
	"chainside-gateway/controllers"
	"chainside-gateway/database"
	"chainside-gateway/kafka"
	"chainside-gateway/middleware"
	"chainside-gateway/repository"
	"chainside-gateway/routes"
	"chainside-gateway/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[ChainsideGateway] ❌ Failed to load config:", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("[ChainsideGateway] ❌ Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Connect DB
	if err := database.Connect(logger); err != nil {
		log.Fatal("[ChainsideGateway] ❌ Failed to connect to DB:", err)
	}

	if !cfg.HasCredentials() {
		logger.Warn("Chainside API credentials are not set; payment initiation will fail until configured")
	}

	orderRepo := repository.NewGormOrderRepository(database.DB)
	tokens := services.NewTokenStore(orderRepo)
	client := chainside.NewClient(cfg.ChainsideClientID, cfg.ChainsideClientSecret, cfg.Sandbox)

	paymentProducer := kafka.NewPaymentEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.PaymentEventTopic)
	defer paymentProducer.Close()

	// Optional SNS mirror of payment events
	var snsPublisher awsclient.SNSPublisher
	if cfg.PaymentSNSTopicARN != "" {
		awsCfg, err := awsclient.LoadAWSConfig(context.Background())
		if err != nil {
			logger.Warn("Failed to load AWS config; SNS mirror disabled", zap.Error(err))
		} else {
			snsPublisher = awsclient.NewSNSClient(awsCfg)
		}
	}

	validator := services.NewValidator(orderRepo, tokens, logger)
	reconciler := services.NewReconciler(orderRepo, paymentProducer, snsPublisher, cfg.PaymentSNSTopicARN, logger)
	checkout := services.NewCheckoutService(orderRepo, tokens, client, cfg.StoreBaseURL, cfg.Confirmations, cfg.GatewayEnabled, logger)

	// HTTP server
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	pc := &controllers.PaymentController{
		Checkout:   checkout,
		Validator:  validator,
		Reconciler: reconciler,
		Repo:       orderRepo,
		Logger:     logger,
	}
	routes.RegisterPaymentRoutes(r, pc)

	log.Println("[ChainsideGateway] ✅ Running on port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("[ChainsideGateway] ❌ Server failed:", err)
	}
}
