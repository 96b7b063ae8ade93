package snipeit

// Config holds configuration for the Snipe-IT API connection.
type Config struct {
	// BaseURL is the API root, e.g. https://assets.example.com/api/v1.
	BaseURL string `mapstructure:"base_url" default:""`
	// APIToken is the personal access token sent as a bearer credential.
	APIToken string `mapstructure:"api_token" default:""`
	// TimeoutSeconds bounds every HTTP call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RequestsPerSecond caps the request rate across all calls. Zero disables the limiter.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"0"`
}
