package internal

import "time"

type Config struct {
	Host           string `env:"HOST,required=true"`
	Port           int    `env:"PORT,required=true"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,required=true"`

	// LimitMessages caps how many messages a conversation query returns.
	// Unset means unlimited.
	LimitMessages *int `env:"LIMIT_MESSAGES"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	WriteWait            time.Duration `env:"WRITE_WAIT,required=true"`
	PongWait             time.Duration `env:"PONG_WAIT,required=true"`

	RestartInterval time.Duration `env:"RESTART_INTERVAL,required=true"`
	GCInterval      time.Duration `env:"GC_INTERVAL,required=true"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,required=true"`
}
