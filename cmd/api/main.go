package main

import (
	"context"
	"time"

	"studysphere/internal/auth"
	bookingshandler "studysphere/internal/bookings/handler"
	bookingsrepo "studysphere/internal/bookings/repository"
	bookingsservice "studysphere/internal/bookings/service"
	materialshandler "studysphere/internal/materials/handler"
	materialsrepo "studysphere/internal/materials/repository"
	materialsservice "studysphere/internal/materials/service"
	noteshandler "studysphere/internal/notes/handler"
	notesrepo "studysphere/internal/notes/repository"
	notesservice "studysphere/internal/notes/service"
	"studysphere/internal/payments/gateway"
	paymentshandler "studysphere/internal/payments/handler"
	paymentsrepo "studysphere/internal/payments/repository"
	paymentsservice "studysphere/internal/payments/service"
	reviewshandler "studysphere/internal/reviews/handler"
	reviewsrepo "studysphere/internal/reviews/repository"
	reviewsservice "studysphere/internal/reviews/service"
	sessionshandler "studysphere/internal/sessions/handler"
	sessionsrepo "studysphere/internal/sessions/repository"
	sessionsservice "studysphere/internal/sessions/service"
	sessionsvalidator "studysphere/internal/sessions/validator"
	usershandler "studysphere/internal/users/handler"
	usersrepo "studysphere/internal/users/repository"
	usersservice "studysphere/internal/users/service"
	"studysphere/pkg/app"
	"studysphere/pkg/config"
	mongotx "studysphere/pkg/db/mongo"
	"studysphere/pkg/events"

	"github.com/joho/godotenv"
)

const ServiceName = "api"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting StudySphere API")

	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	authority := auth.NewJWTAuthority(cfg.JWTSecret, cfg.JWTTTL)

	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	sessionRepo := sessionsrepo.NewMongoSessionRepository(cfg)
	userRepo := usersrepo.NewMongoUserRepository(cfg)
	paymentRepo := paymentsrepo.NewMongoPaymentRepository(cfg)
	reviewRepo := reviewsrepo.NewMongoReviewRepository(cfg)
	materialRepo := materialsrepo.NewMongoMaterialRepository(cfg)
	noteRepo := notesrepo.NewMongoNoteRepository(cfg)

	ensureIndexes(cfg, bookingRepo, userRepo)

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		var err error
		producer, err = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaPaymentsTopic)
		if err != nil {
			cfg.Log.Fatal("Failed to create event producer", "error", err)
		}
		cfg.Log.Info("Event producer configured", "topic", cfg.KafkaPaymentsTopic)
	} else {
		cfg.Log.Info("No Kafka brokers configured, payment events disabled")
	}

	sessionService := sessionsservice.NewSessionService(
		sessionRepo,
		sessionsvalidator.NewSessionValidator(cfg.Log),
		mongotx.NewTransactionManager(cfg.Client.Mongo),
		cfg,
		materialRepo,
		reviewRepo,
	)
	bookingService := bookingsservice.NewBookingService(bookingRepo, sessionRepo, userRepo, cfg)
	userService := usersservice.NewUserService(userRepo, authority, cfg)
	reviewService := reviewsservice.NewReviewService(reviewRepo, bookingRepo, cfg)
	materialService := materialsservice.NewMaterialService(materialRepo, cfg)
	noteService := notesservice.NewNoteService(noteRepo, cfg)

	var publisher paymentsservice.EventPublisher
	if producer != nil {
		publisher = producer
	}
	paymentService := paymentsservice.NewPaymentService(
		paymentRepo,
		bookingRepo,
		sessionRepo,
		gateway.NewStripeGateway(cfg.StripeSecretKey),
		publisher,
		cfg,
	)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		usershandler.NewUserHandler(userService, authority, cfg.Log),
		sessionshandler.NewSessionHandler(sessionService, authority, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, authority, cfg.Log),
		paymentshandler.NewPaymentHandler(paymentService, authority, cfg.Log),
		reviewshandler.NewReviewHandler(reviewService, authority, cfg.Log),
		materialshandler.NewMaterialHandler(materialService, authority, cfg.Log),
		noteshandler.NewNoteHandler(noteService, authority, cfg.Log),
	)
	if producer != nil {
		serverApp.OnShutdown(func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close event producer", "error", err)
			}
		})
	}

	serverApp.Run()
}

func ensureIndexes(cfg *config.Config, bookings bookingsrepo.BookingRepository, users usersrepo.UserRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := bookings.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to create booking indexes", "error", err)
	}
	if err := users.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to create user indexes", "error", err)
	}
	cfg.Log.Info("Database indexes ensured")
}
