package db

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DSNInfo is a password-free description of a database DSN, safe to log.
type DSNInfo struct {
	Type        string `json:"type"`
	Host        string `json:"host,omitempty"`
	Port        int    `json:"port,omitempty"`
	User        string `json:"user,omitempty"`
	Name        string `json:"name,omitempty"`
	SSLMode     string `json:"ssl_mode,omitempty"`
	Path        string `json:"path,omitempty"`
	PasswordSet bool   `json:"password_set"`
}

// String renders the DSN info without credentials.
func (i DSNInfo) String() string {
	if i.Type == DialectSQLite {
		return fmt.Sprintf("sqlite path=%s", i.Path)
	}
	return fmt.Sprintf("postgres host=%s port=%d user=%s dbname=%s sslmode=%s", i.Host, i.Port, i.User, i.Name, i.SSLMode)
}

// DescribeDSN parses a sqlite file DSN or a postgres URL DSN.
func DescribeDSN(dsn string) (DSNInfo, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return DSNInfo{}, fmt.Errorf("empty dsn")
	}

	lowered := strings.ToLower(trimmed)
	if strings.HasPrefix(lowered, "file:") || !strings.Contains(lowered, "://") {
		pathPart := trimmed
		if strings.HasPrefix(lowered, "file:") {
			pathPart = trimmed[len("file:"):]
		}
		pathPart, _, _ = strings.Cut(pathPart, "?")
		return DSNInfo{
			Type: DialectSQLite,
			Path: strings.TrimSpace(pathPart),
		}, nil
	}

	u, errParse := url.Parse(trimmed)
	if errParse != nil {
		return DSNInfo{}, fmt.Errorf("parse dsn: %w", errParse)
	}

	switch strings.ToLower(strings.TrimSpace(u.Scheme)) {
	case "postgres", "postgresql":
		port := 5432
		if rawPort := strings.TrimSpace(u.Port()); rawPort != "" {
			parsedPort, errPort := strconv.Atoi(rawPort)
			if errPort != nil {
				return DSNInfo{}, fmt.Errorf("parse port: %w", errPort)
			}
			port = parsedPort
		}

		username := ""
		passwordSet := false
		if u.User != nil {
			username = strings.TrimSpace(u.User.Username())
			_, passwordSet = u.User.Password()
		}

		sslMode := strings.TrimSpace(u.Query().Get("sslmode"))
		if sslMode == "" {
			sslMode = "disable"
		}

		return DSNInfo{
			Type:        DialectPostgres,
			Host:        strings.TrimSpace(u.Hostname()),
			Port:        port,
			User:        username,
			Name:        strings.TrimSpace(strings.TrimPrefix(u.Path, "/")),
			SSLMode:     sslMode,
			PasswordSet: passwordSet,
		}, nil
	default:
		return DSNInfo{}, fmt.Errorf("unsupported dsn scheme")
	}
}
