package config

const (
	// AppName is the name of the application.
	AppName = "tickets"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvEncryptionKey is the environment variable for the key that ticket topics and close reasons are encrypted with.
	EnvEncryptionKey = `ENCRYPTION_KEY`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`

	// EnvRedisAddr is the environment variable for the Redis address. Ticket numbers are counted in Redis when set.
	EnvRedisAddr = `REDIS_ADDR`

	// EnvRedisPassword is the environment variable for the Redis password.
	EnvRedisPassword = `REDIS_PASSWORD`

	// EnvMaxListeners is the environment variable for the maximum number of ticket event listeners.
	EnvMaxListeners = `MAX_LISTENERS`

	// EnvDefaultLocale is the environment variable for the locale used when a guild has not set one.
	EnvDefaultLocale = `DEFAULT_LOCALE`
)

const (
	defaultMonitoringPort = "8080"
	defaultMaxListeners   = 10
	defaultLocale         = "en-GB"
)

var (
	// BotToken is the token for the bot.
	BotToken string

	// ApplicationId is the ID of the application.
	ApplicationId string

	// MongoUri is the URI for the MongoDB database.
	MongoUri string

	// EncryptionKey is the secret the ticket encryption key is derived from.
	EncryptionKey string

	// MonitoringPort is the port for the monitoring server.
	MonitoringPort string

	// RedisAddr is the address of the Redis server. Empty when Redis is not used.
	RedisAddr string

	// RedisPassword is the password for the Redis server.
	RedisPassword string

	// MaxListeners is the maximum number of ticket event listeners.
	MaxListeners int

	// DefaultLocale is the locale used when a guild has not set one.
	DefaultLocale string
)
