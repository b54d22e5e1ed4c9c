package app

import (
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"contactform/internal/config"
	"contactform/pkg/categorizer"
)

type App struct {
	Config      *config.Config
	Categorizer categorizer.ContentCategorizer
}

func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	app := &App{Config: cfg}

	if err := app.initCategorizer(); err != nil {
		return nil, err
	}

	log.Debug("Application initialization complete.")
	return app, nil
}

func (a *App) initCategorizer() error {
	prompt, err := config.LoadPromptContent(a.Config.Gemini.PromptTemplate)
	if err != nil {
		return fmt.Errorf("init categorizer: %w", err)
	}

	a.Categorizer = categorizer.NewGeminiCategorizer(categorizer.GeminiOptions{
		BaseURL:        a.Config.Gemini.BaseURL,
		Model:          a.Config.Gemini.Model,
		PromptTemplate: prompt,
		APIKey:         a.Config.GeminiAPIKey,
		Retry: categorizer.RetryPolicy{
			MaxAttempts:     a.Config.Retry.MaxAttempts,
			InitialDelay:    a.Config.Retry.InitialDelay,
			BackoffMultiple: 2.0,
		},
		HTTPClient: &http.Client{Timeout: a.Config.Gemini.Timeout},
	})

	if a.Config.GeminiAPIKey() == "" {
		log.Warnf("%s is not set; contact submissions will fail until it is provided", config.APIKeyEnv)
	}
	log.Infof("Gemini categorizer initialized with model %s", a.Config.Gemini.Model)
	return nil
}
