package config

import (
	"github.com/studyforge/backend/studyforge"
)

// WebAppConfig contains web-specific configuration
type WebAppConfig struct {
	Config      *studyforge.Config
	Debug       bool
	Environment string
}

// NewWebAppConfig creates a new web app configuration
func NewWebAppConfig(cfg *studyforge.Config, debug bool) *WebAppConfig {
	environment := "production"
	if debug {
		environment = "development"
	}

	return &WebAppConfig{
		Config:      cfg,
		Debug:       debug,
		Environment: environment,
	}
}

// GetServerConfig returns the HTTP server configuration
func (w *WebAppConfig) GetServerConfig() studyforge.ServerConfig {
	return w.Config.Server
}

// GetAuthConfig returns the token verification configuration
func (w *WebAppConfig) GetAuthConfig() studyforge.AuthConfig {
	return w.Config.Auth
}

// GetLogConfig returns the log configuration
func (w *WebAppConfig) GetLogConfig() studyforge.LogConfig {
	return w.Config.Log
}
