package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/line/line-bot-sdk-go/v7/linebot"
	"go.uber.org/zap"

	"lumie/internal/config"
	"lumie/internal/identity"
	"lumie/internal/ledger"
	"lumie/internal/line"
	"lumie/internal/llm"
	"lumie/internal/logging"
	"lumie/internal/perfume"
	"lumie/internal/reminder"
	"lumie/internal/router"
	"lumie/internal/scheduler"
	"lumie/internal/session"
	"lumie/internal/transcript"
	"lumie/internal/web"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	logger, err := logging.New(cfg.LogDev, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ledgerStore, err := ledger.NewFileStore(cfg.LedgerFilePath)
	if err != nil {
		logger.Fatal("failed to init expense ledger", zap.Error(err))
	}
	idCache, err := identity.NewFileCache(cfg.IdentityFilePath, logger)
	if err != nil {
		logger.Fatal("failed to init identity cache", zap.Error(err))
	}
	transcripts, err := transcript.NewFileRecorder(cfg.TranscriptDir)
	if err != nil {
		logger.Fatal("failed to init transcripts", zap.Error(err))
	}

	// Each external feature initializes on its own: a missing credential
	// disables that feature, never the process.
	var llmClient llm.Client
	if cfg.CompletionEnabled() {
		llmClient = llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		logger.Info("completion provider configured", zap.String("model", cfg.OpenAIModel))
	} else {
		logger.Warn("no completion key configured, chat replies fall back to the apology line")
	}

	var sheetAppender perfume.Appender
	if cfg.SheetsEnabled() {
		app, err := perfume.NewSheetAppender(context.Background(),
			cfg.SheetsCredentialsPath, cfg.SheetsSpreadsheetID, cfg.SheetsRange)
		if err != nil {
			logger.Warn("sheets append disabled", zap.Error(err))
		} else {
			sheetAppender = app
			logger.Info("perfume draws will be appended to the spreadsheet")
		}
	}
	drawer := perfume.NewDrawer(sheetAppender, logger)

	sessions := session.NewMemoryStore()
	reminders := reminder.NewScheduler(cfg.ReminderDedup, logger)
	defer reminders.Stop()

	convRouter := router.New(ledgerStore, sessions, drawer, llmClient, reminders, cfg.ReminderDelay, logger)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.SetHTMLTemplate(web.Templates())

	webHandler := web.NewHandler(convRouter, sessions, transcripts, cfg.WebSecret, cfg.SessionCookie, logger)
	webHandler.Register(engine)

	if cfg.LineEnabled() {
		bot, err := linebot.New(cfg.LineChannelSecret, cfg.LineChannelToken)
		if err != nil {
			logger.Fatal("failed to init line client", zap.Error(err))
		}
		lineHandler := line.NewHandler(bot, line.NewMessenger(bot), convRouter, idCache, drawer, cfg.PushSecret, logger)
		lineHandler.Register(engine)
		logger.Info("line webhook registered")

		if cfg.DailyPerfumeCron != "" {
			sched := scheduler.New(logger)
			if err := sched.Start(cfg.DailyPerfumeCron, lineHandler.PushDailyPerfume); err != nil {
				logger.Warn("daily perfume schedule disabled", zap.Error(err))
			} else {
				defer sched.Stop()
			}
		}
	} else {
		logger.Warn("line credentials missing, webhook and push endpoints disabled")
	}

	logger.Info("Lumie is home", zap.String("addr", cfg.ListenAddr))
	if err := engine.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
