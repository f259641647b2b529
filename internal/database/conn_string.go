package database

import (
	"net/url"
	"strconv"

	"github.com/kaan069/yolsepetigoAcenta/internal/config"
	"github.com/kaan069/yolsepetigoAcenta/internal/version"
)

// ApplicationName is reported to the server as application_name.
const ApplicationName = "acenta"

// BuildConnString builds a PostgreSQL URL from config.
// Credentials are escaped, so passwords may contain any character.
func BuildConnString(cfg config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = config.DefaultDBSSLMode
	}
	port := cfg.Port
	if port == 0 {
		port = config.DefaultDBPort
	}

	q := url.Values{}
	q.Set("sslmode", sslMode)
	q.Set("application_name", ApplicationName+"/"+version.Version)

	u := url.URL{
		Scheme:   "postgres",
		Host:     cfg.Host + ":" + strconv.Itoa(port),
		Path:     "/" + cfg.Name,
		RawQuery: q.Encode(),
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	return u.String()
}
