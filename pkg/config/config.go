package config

import (
	"time"
)

//revive:disable
type ExchangeRateApi struct {
	// ApiKey is sent as the access_key query parameter when set. It is only
	// ever read from the environment.
	ApiKey      string        `envconfig:"API_KEY"`
	ApiUrl      string        `envconfig:"API_URL" default:"https://api.exchangerate.host"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"0s"`
}

//revive:enable

// ExchangeRateCache configures the optional cache of live quotes. A zero TTL
// disables it.
type ExchangeRateCache struct {
	TTL    time.Duration `envconfig:"TTL" default:"0s"`
	Prefix string        `envconfig:"PREFIX" default:"fx:rate:"`
}

type Redis struct {
	URL          string        `envconfig:"URL" default:""`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

// Session configures converter sessions kept by the HTTP API. A zero idle TTL
// keeps them until deleted.
type Session struct {
	IdleTTL time.Duration `envconfig:"IDLE_TTL" default:"30m"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[fxconverter]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env               string             `envconfig:"APP_ENV" default:"development"`
	Server            *Server            `envconfig:"SERVER"`
	Log               *Log               `envconfig:"LOG"`
	ExchangeRateApi   *ExchangeRateApi   `envconfig:"EXCHANGE_RATE"`
	ExchangeRateCache *ExchangeRateCache `envconfig:"EXCHANGE_RATE_CACHE"`
	Redis             *Redis             `envconfig:"REDIS"`
	RateLimit         *RateLimit         `envconfig:"RATE_LIMIT"`
	Session           *Session           `envconfig:"SESSION"`
}
