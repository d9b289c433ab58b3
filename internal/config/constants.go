package config

// Store drivers
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Environments
const (
	EnvDev        = "dev"
	EnvStaging    = "staging"
	EnvProduction = "production"
)

// Placeholder values shipped in .env.example
const (
	examplePassword = "change_this_secure_password"
	exampleDiscord  = "your_discord_bot_token"
)
