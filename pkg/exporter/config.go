// Copyright (c) 2025, the fleethealth authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package exporter

import (
	"fmt"
	"os"
	"time"

	"github.com/fleetops/fleethealth/pkg/defaults"
	"github.com/fleetops/fleethealth/pkg/serializer"
)

// DBConfig is the fleet server database connection configuration.
type DBConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"-"`
	SSLMode  string `yaml:"sslMode" json:"sslMode"`
}

// DSN renders the pgx connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// Config is the exporter daemon configuration, loaded from config.yml.
type Config struct {
	// Address is the listen address; empty means all interfaces.
	Address string `yaml:"address" json:"address"`

	// Port is the listen port.
	Port int `yaml:"port" json:"port"`

	// Server is the fleet server name stamped on every metric.
	Server string `yaml:"server" json:"server"`

	// RefreshSeconds is the period between data gathering cycles.
	RefreshSeconds int `yaml:"refreshSeconds" json:"refreshSeconds"`

	// RateLimit is the allowed requests per second.
	RateLimit float64 `yaml:"rateLimit" json:"rateLimit"`

	// RateLimitBurst is the allowed burst above RateLimit.
	RateLimitBurst int `yaml:"rateLimitBurst" json:"rateLimitBurst"`

	// DB configures the fleet database connection.
	DB DBConfig `yaml:"db" json:"db"`
}

// DefaultConfig returns the configuration used when no config file is
// given. PORT and DB_PASSWORD environment variables override their fields.
func DefaultConfig() *Config {
	cfg := &Config{
		Port:           defaults.ExporterPort,
		RefreshSeconds: int(defaults.ExporterRefreshInterval / time.Second),
		RateLimit:      100,
		RateLimitBurst: 200,
		DB: DBConfig{
			Host:    "localhost",
			Port:    5432,
			Name:    "fleet",
			User:    "fleet",
			SSLMode: "disable",
		},
	}
	cfg.applyEnv()
	return cfg
}

// LoadConfig reads the config file and fills unset fields with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg, err := serializer.FromFile[Config](path)
	if err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := &Config{
		Port:           defaults.ExporterPort,
		RefreshSeconds: int(defaults.ExporterRefreshInterval / time.Second),
		RateLimit:      100,
		RateLimitBurst: 200,
		DB: DBConfig{
			Host:    "localhost",
			Port:    5432,
			Name:    "fleet",
			User:    "fleet",
			SSLMode: "disable",
		},
	}

	if c.Port == 0 {
		c.Port = def.Port
	}
	if c.RefreshSeconds <= 0 {
		c.RefreshSeconds = def.RefreshSeconds
	}
	if c.RateLimit <= 0 {
		c.RateLimit = def.RateLimit
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = def.RateLimitBurst
	}
	if c.DB.Host == "" {
		c.DB.Host = def.DB.Host
	}
	if c.DB.Port == 0 {
		c.DB.Port = def.DB.Port
	}
	if c.DB.Name == "" {
		c.DB.Name = def.DB.Name
	}
	if c.DB.User == "" {
		c.DB.User = def.DB.User
	}
	if c.DB.SSLMode == "" {
		c.DB.SSLMode = def.DB.SSLMode
	}
}

func (c *Config) applyEnv() {
	if portStr := os.Getenv("PORT"); portStr != "" {
		var port int
		if _, err := fmt.Sscanf(portStr, "%d", &port); err == nil {
			c.Port = port
		}
	}
	if pw := os.Getenv("DB_PASSWORD"); pw != "" {
		c.DB.Password = pw
	}
}

// RefreshInterval returns the gathering period as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshSeconds) * time.Second
}
