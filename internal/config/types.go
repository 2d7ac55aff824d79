package config

import "time"

type ServerConfig struct {
	ReadTimeout time.Duration `yaml:"read_timeout"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

type LogConfig struct {
	Format string `yaml:"format"` // text | json
}

// TLSConfig describes key material for the HTTPS transport. In-memory PEM
// buffers take precedence over file paths.
type TLSConfig struct {
	Key        string `yaml:"key"`
	Cert       string `yaml:"cert"`
	KeyPEM     []byte `yaml:"-"`
	CertPEM    []byte `yaml:"-"`
	SelfSigned bool   `yaml:"self_signed"`
}

type Config struct {
	Host      string        `yaml:"host"`
	Port      int           `yaml:"port"`
	Root      string        `yaml:"root"`
	Live      bool          `yaml:"live"`
	Fallback  string        `yaml:"fallback"`
	EventPath string        `yaml:"event_path"`
	Metrics   bool          `yaml:"metrics"`
	Auth      string        `yaml:"auth"` // user:bcrypt-hash
	TLS       *TLSConfig    `yaml:"tls"`
	Server    *ServerConfig `yaml:"server"`
	Log       *LogConfig    `yaml:"log"`
}
