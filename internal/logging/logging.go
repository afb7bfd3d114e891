package logging

import "go.uber.org/zap"

// New builds the production JSON logger shared by the server and the
// worker. Callers own Sync.
func New() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
