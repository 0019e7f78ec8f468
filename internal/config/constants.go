package config

import "time"

const (
	// Database pool. The workload is short single-row statements, two
	// to four per exchange.
	DBMaxConns        = 16
	DBMinConns        = 4
	DBConnMaxLifetime = 30 * time.Minute

	// Response cache
	CacheTTL           = 5 * time.Minute
	CacheSweepInterval = 60 * time.Second

	// History windows
	CacheKeyTurns   = 3
	PromptTurns     = 6
	RegenTurns      = 4
	ClientSendTurns = 10

	// Message limits
	MaxMessageLen = 10000

	// Generation
	DispatchTimeBudget = 90 * time.Second
	MaxOutputTokens    = 1024
	Temperature        = 0.9
	TopP               = 0.95
	TopK               = 20

	// Title synthesis
	TitleMaxOutputTokens = 25
	TitleTemperature     = 0.7
	TitleMaxWords        = 3
	TitleFallbackChars   = 30
)

// PriorityModels are the generation backends tried in order when
// GEMINI_MODELS is not set.
var PriorityModels = []string{
	"gemini-1.5-flash-002",
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
	"gemini-1.5-pro-002",
	"gemini-1.5-pro",
}
