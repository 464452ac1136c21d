package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/goalcoach/internal/calendar"
	"github.com/templui/goalcoach/internal/config"
	"github.com/templui/goalcoach/internal/db"
	"github.com/templui/goalcoach/internal/llm"
	"github.com/templui/goalcoach/internal/markdown"
	"github.com/templui/goalcoach/internal/repository"
	"github.com/templui/goalcoach/internal/service"
	"github.com/templui/goalcoach/internal/storage"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Resolver       *calendar.Resolver
	AuthService    *service.AuthService
	ProfileService *service.ProfileService
	GoalService    *service.GoalService
	ChatService    *service.ChatService
	ConfirmService *service.ConfirmService
	MessageService *service.MessageService
	ExportService  *service.ExportService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	provider := llm.NewOpenAIProvider(llm.OpenAIConfig{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		Style:       cfg.OpenAIAPIStyle,
		Temperature: cfg.OpenAITemperature,
		MaxRetries:  cfg.OpenAIMaxRetries,
	})

	// Storage (nil when no bucket is configured)
	exportStorage, err := storage.New(ctx, cfg)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return Assemble(cfg, database, provider, exportStorage), nil
}

// Assemble wires repositories and services around already opened
// infrastructure.
func Assemble(cfg *config.Config, database *sqlx.DB, provider llm.Provider, exportStorage storage.Storage) *App {
	resolver := calendar.NewResolver()

	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	goalDayRepository := repository.NewGoalDayRepository(database)
	messageRepository := repository.NewMessageRepository(database)

	// Services
	notesService := service.NewNotesService(provider, goalDayRepository, cfg.OpenAITimeout)
	profileService := service.NewProfileService(profileRepository, resolver)
	goalService := service.NewGoalService(goalRepository, goalDayRepository, notesService, resolver)
	authService := service.NewAuthService(
		userRepository,
		profileRepository,
		resolver,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
		cfg.DefaultTimezone,
	)
	chatService := service.NewChatService(
		goalRepository,
		messageRepository,
		goalService,
		profileService,
		provider,
		resolver,
		service.ChatConfig{
			HistoryLimit: cfg.ChatHistoryLimit,
			ActionTool:   cfg.CoachActionTool,
			ModelTimeout: cfg.OpenAITimeout,
		},
	)
	confirmService := service.NewConfirmService(goalRepository, messageRepository, goalDayRepository, notesService)
	messageService := service.NewMessageService(goalRepository, messageRepository, markdown.NewParser())
	exportService := service.NewExportService(goalRepository, goalDayRepository, messageService, exportStorage)

	return &App{
		Cfg:            cfg,
		DB:             database,
		Resolver:       resolver,
		AuthService:    authService,
		ProfileService: profileService,
		GoalService:    goalService,
		ChatService:    chatService,
		ConfirmService: confirmService,
		MessageService: messageService,
		ExportService:  exportService,
	}
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
