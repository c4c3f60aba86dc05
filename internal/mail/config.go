package mail

// Config is passed by value into the client at construction.
type Config struct {
	GraphURL    string `yaml:"graph_url"`
	ComposeURL  string `yaml:"compose_url"`
	AccessToken string `yaml:"access_token"`
	// LookbackDays bounds ListRecent.
	LookbackDays int `yaml:"lookback_days"`
	// PageSize caps the number of messages returned by ListRecent.
	PageSize int `yaml:"page_size"`
}

// DefaultConfig returns the public Graph endpoints with a two week lookback.
func DefaultConfig() Config {
	return Config{
		GraphURL:     "https://graph.microsoft.com/v1.0",
		ComposeURL:   "https://outlook.office.com/mail/deeplink/compose",
		LookbackDays: 14,
		PageSize:     25,
	}
}
