package mosyle

// Config holds configuration for the Mosyle Business API.
type Config struct {
	// BaseURL is the API root.
	BaseURL string `mapstructure:"base_url" default:"https://businessapi.mosyle.com/v1"`
	// AccessToken is the API access token issued in the Mosyle console.
	AccessToken string `mapstructure:"access_token" default:""`
	// Email is the administrator account used to obtain a JWT.
	Email string `mapstructure:"email" default:""`
	// Password is the administrator password.
	Password string `mapstructure:"password" default:""`
	// TimeoutSeconds bounds every HTTP call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
