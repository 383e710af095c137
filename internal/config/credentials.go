package config

import (
	"fmt"
	"os"

	"autojobfinder/pkg/models"
	"autojobfinder/pkg/utils"
)

// Credentials holds a platform login. It is read from the environment only.
type Credentials struct {
	Username string
	Password string
}

// String never includes the password
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Username: %q, Password: [REDACTED]}", c.Username)
}

// credentialEnv maps platforms with a login to their environment variables
var credentialEnv = map[models.Platform][2]string{
	models.PlatformLinkedIn:  {"LINKEDIN_USERNAME", "LINKEDIN_PASSWORD"},
	models.PlatformGlassdoor: {"GLASSDOOR_USERNAME", "GLASSDOOR_PASSWORD"},
}

// LoadCredentials reads the username and password for p from the environment.
// It fails with ErrCredentialsMissing when either value is absent.
func LoadCredentials(p models.Platform) (Credentials, error) {
	names, ok := credentialEnv[p]
	if !ok {
		return Credentials{}, fmt.Errorf("%w: %s has no login", utils.ErrCredentialsMissing, p)
	}

	creds := Credentials{
		Username: os.Getenv(names[0]),
		Password: os.Getenv(names[1]),
	}
	if creds.Username == "" || creds.Password == "" {
		return Credentials{}, fmt.Errorf("%w: %s and %s must be set", utils.ErrCredentialsMissing, names[0], names[1])
	}
	return creds, nil
}

// IndeedAPIKey returns the optional Indeed API key
func IndeedAPIKey() string {
	return os.Getenv("INDEED_API_KEY")
}
