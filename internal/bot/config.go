package bot

type Config struct {
	Token  string
	ChatId int64
	// Endpoint overrides the Bot API URL format, tg.APIEndpoint by default.
	Endpoint string
}
