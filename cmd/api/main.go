package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/canalzap/waba-gateway/internal/infra/database"
	"github.com/canalzap/waba-gateway/internal/infra/http/handlers"
	custommw "github.com/canalzap/waba-gateway/internal/infra/http/middleware"
	"github.com/canalzap/waba-gateway/internal/infra/integration/meta"
	"github.com/canalzap/waba-gateway/internal/infra/mail"
	"github.com/canalzap/waba-gateway/internal/infra/queue"
	"github.com/canalzap/waba-gateway/internal/infra/worker"
	"github.com/canalzap/waba-gateway/internal/usecase"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		envOr("RABBITMQ_USER", "guest"),
		envOr("RABBITMQ_PASS", "guest"),
		envOr("RABBITMQ_HOST", "localhost"),
		envOr("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositories
	templateRepo := database.NewTemplateRepository(db)
	messageRepo := database.NewMessageRepository(db)

	// 2. Gateways and adapters
	graphBaseURL := "https://graph.facebook.com/" + envOr("WHATSAPP_API_VERSION", "v22.0")
	metaClient := meta.NewClient(
		os.Getenv("META_ACCESS_TOKEN"),
		os.Getenv("META_PHONE_NUMBER_ID"),
		os.Getenv("META_BUSINESS_ACCOUNT_ID"),
		graphBaseURL,
	)
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	alertSender := mail.NewAlertSender(
		os.Getenv("MAIL_HOST"), 587, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
		os.Getenv("ALERT_EMAIL"),
	)

	// 3. Workers (dispatch queue consumer and stale-message reaper)
	dispatchWorker := queue.NewWorker(rabbitMQ.Ch, metaClient, messageRepo)
	go dispatchWorker.Start(queue.QueueName)

	staleWorker := worker.NewStaleMessageWorker(db)
	go staleWorker.Start(context.Background())

	// 4. UseCases
	createTemplateUC := usecase.NewCreateTemplateUseCase(templateRepo, metaClient)
	sendTemplateUC := usecase.NewSendTemplateUseCase(messageRepo, producer)
	sendMessageUC := usecase.NewSendMessageUseCase(messageRepo, producer, metaClient)
	processWebhookUC := usecase.NewProcessWebhookUseCase(messageRepo, templateRepo, alertSender)

	// 5. Handlers
	templateHandler := handlers.NewTemplateHandler(createTemplateUC, sendTemplateUC, metaClient)
	messageHandler := handlers.NewMessageHandler(sendMessageUC)
	mediaHandler := handlers.NewMediaHandler(metaClient)
	flowHandler := handlers.NewFlowHandler(metaClient)
	businessHandler := handlers.NewBusinessHandler(metaClient, os.Getenv("META_BUSINESS_PORTFOLIO_ID"))
	webhookHandler := handlers.NewWebhookHandler(os.Getenv("WEBHOOK_VERIFY_TOKEN"), processWebhookUC)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn, metaClient)

	// 6. Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(custommw.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	r.Route("/templates", func(r chi.Router) {
		r.Post("/", templateHandler.HandleCreate)
		r.Post("/validate", templateHandler.HandleValidate)
		r.Post("/send", templateHandler.HandleSend)
		r.Get("/", templateHandler.HandleList)
		r.Delete("/{name}", templateHandler.HandleDelete)
	})

	r.Route("/messages", func(r chi.Router) {
		r.Post("/text", messageHandler.HandleSendText)
		r.Post("/media", messageHandler.HandleSendMedia)
		r.Post("/location", messageHandler.HandleSendLocation)
		r.Post("/reaction", messageHandler.HandleSendReaction)
		r.Post("/{id}/read", messageHandler.HandleMarkRead)
	})

	r.Route("/media", func(r chi.Router) {
		r.Post("/", mediaHandler.HandleUpload)
		r.Get("/{id}", mediaHandler.HandleGet)
		r.Delete("/{id}", mediaHandler.HandleDelete)
	})

	r.Route("/flows", func(r chi.Router) {
		r.Post("/", flowHandler.HandleCreate)
		r.Get("/", flowHandler.HandleList)
		r.Post("/migrate", flowHandler.HandleMigrate)
		r.Get("/{id}", flowHandler.HandleGet)
		r.Post("/{id}", flowHandler.HandleUpdate)
		r.Post("/{id}/publish", flowHandler.HandlePublish)
		r.Post("/{id}/json", flowHandler.HandleUploadJSON)
		r.Get("/{id}/preview", flowHandler.HandlePreview)
		r.Get("/{id}/metrics", flowHandler.HandleMetrics)
	})

	r.Route("/business", func(r chi.Router) {
		r.Get("/phone-numbers", businessHandler.HandlePhoneNumbers)
		r.Get("/phone-number", businessHandler.HandlePhoneNumberInfo)
		r.Get("/account", businessHandler.HandleBusinessAccount)
		r.Get("/analytics", businessHandler.HandleAnalytics)
		r.Get("/conversation-analytics", businessHandler.HandleConversationAnalytics)
		r.Get("/quality-rating", businessHandler.HandleQualityRating)
		r.Get("/wabas", businessHandler.HandleOwnedWABAs)
		r.Get("/wabas/shared", businessHandler.HandleSharedWABAs)
		r.Get("/wabas/{id}", businessHandler.HandleWABADetails)
	})

	r.Get("/webhook", webhookHandler.HandleVerify)
	r.Post("/webhook", webhookHandler.HandleEvent)

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":" + envOr("PORT", "8080")
	log.Printf("waba-gateway listening on %s", port)
	http.ListenAndServe(port, r)
}
