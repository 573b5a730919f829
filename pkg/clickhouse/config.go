package clickhouse

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Option mutates a Settings value before the pool is opened.
type Option func(*Settings)

// Settings describes one ClickHouse endpoint and its pool limits.
type Settings struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	HTTP     bool

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	PingTimeout  time.Duration
	QueryTimeout time.Duration
}

func defaultSettings() Settings {
	return Settings{
		Port:            9000,
		Database:        "default",
		User:            "default",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     30 * time.Second,
		PingTimeout:     5 * time.Second,
	}
}

// WithEndpoint sets host, port and database.
func WithEndpoint(host string, port int, database string) Option {
	return func(s *Settings) {
		s.Host = host
		if port > 0 {
			s.Port = port
		}
		if database != "" {
			s.Database = database
		}
	}
}

// WithCredentials sets username and password.
func WithCredentials(user, password string) Option {
	return func(s *Settings) {
		s.User = user
		s.Password = password
	}
}

// WithHTTP switches from the native protocol to HTTP.
func WithHTTP(enabled bool) Option {
	return func(s *Settings) { s.HTTP = enabled }
}

// WithTimeouts sets dial, read and per-query limits; zero keeps the current value.
func WithTimeouts(dial, read, query time.Duration) Option {
	return func(s *Settings) {
		if dial > 0 {
			s.DialTimeout = dial
		}
		if read > 0 {
			s.ReadTimeout = read
		}
		if query > 0 {
			s.QueryTimeout = query
		}
	}
}

func (s Settings) validate() error {
	if s.Host == "" {
		return errors.New("clickhouse: host is required")
	}
	if s.Database == "" {
		return errors.New("clickhouse: database is required")
	}
	return nil
}

// DSN renders the clickhouse-go connection string.
func (s Settings) DSN() string {
	scheme := "clickhouse"
	if s.HTTP {
		scheme = "http"
	}
	q := url.Values{}
	if s.DialTimeout > 0 {
		q.Set("dial_timeout", s.DialTimeout.String())
	}
	if s.ReadTimeout > 0 {
		q.Set("read_timeout", s.ReadTimeout.String())
	}
	if s.QueryTimeout > 0 {
		q.Set("max_execution_time", strconv.Itoa(int(s.QueryTimeout/time.Second)))
	}
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(s.User, s.Password),
		Host:     net.JoinHostPort(s.Host, strconv.Itoa(s.Port)),
		Path:     "/" + s.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}
