// Package config loads typed configuration structs from environment
// variables, with optional .env bootstrapping for local development.
//
//	type ServerConfig struct {
//		Addr         string        `env:"ADDR" envDefault:":8000"`
//		QueueSize    int           `env:"QUEUE_SIZE" envDefault:"100"`
//		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
//	}
//
//	cfg, err := config.Load[ServerConfig]()
//
// Missing required variables surface as ErrParsingConfig with the underlying
// parser error joined in.
package config
