// Package config loads service settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/istore/storefront/notify"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config is the full service configuration.
type Config struct {
	Port        string            `yaml:"port"`
	MetricsAddr string            `yaml:"metrics_addr"`
	LogLevel    string            `yaml:"log_level"`
	Store       StoreConfig       `yaml:"store"`
	Tickets     TicketsConfig     `yaml:"tickets"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Notify      NotifyConfig      `yaml:"notify"`
	SMTP        notify.SMTPConfig `yaml:"smtp"`
}

// StoreConfig selects the product and cart backend.
type StoreConfig struct {
	Driver        string `yaml:"driver"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

// TicketsConfig selects the ticket ledger. An empty driver keeps tickets in
// the product store's backend.
type TicketsConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
}

// KafkaConfig locates the notifications topic. No brokers disables Kafka.
type KafkaConfig struct {
	Brokers string `yaml:"brokers"`
	Topic   string `yaml:"topic"`
	GroupID string `yaml:"group_id"`
}

// NotifyConfig sizes the notification dispatcher.
type NotifyConfig struct {
	QueueSize   int           `yaml:"queue_size"`
	Workers     int           `yaml:"workers"`
	SendTimeout time.Duration `yaml:"send_timeout"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	d := notify.DefaultDispatcherConfig()
	return &Config{
		Port:        "50400",
		MetricsAddr: ":9400",
		LogLevel:    "info",
		Store: StoreConfig{
			Driver:        DriverMemory,
			MongoDatabase: "storefront",
		},
		Tickets: TicketsConfig{
			SQLitePath: "tickets.db",
		},
		Kafka: KafkaConfig{
			Topic:   "storefront.notifications",
			GroupID: "storefront-notifier",
		},
		Notify: NotifyConfig{
			QueueSize:   d.QueueSize,
			Workers:     d.Workers,
			SendTimeout: d.SendTimeout,
		},
		SMTP: notify.SMTPConfig{
			Host: "localhost",
			Port: 25,
			From: "noreply@istore.local",
		},
	}
}

// Load reads path (if non-empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	vars := map[string]*string{
		"PORT":           &c.Port,
		"METRICS_ADDR":   &c.MetricsAddr,
		"LOG_LEVEL":      &c.LogLevel,
		"STORE_DRIVER":   &c.Store.Driver,
		"MONGO_URI":      &c.Store.MongoURI,
		"MONGO_DATABASE": &c.Store.MongoDatabase,
		"TICKET_DRIVER":  &c.Tickets.Driver,
		"SQLITE_PATH":    &c.Tickets.SQLitePath,
		"KAFKA_BROKERS":  &c.Kafka.Brokers,
		"KAFKA_TOPIC":    &c.Kafka.Topic,
		"KAFKA_GROUP_ID": &c.Kafka.GroupID,
		"SMTP_HOST":      &c.SMTP.Host,
		"SMTP_USERNAME":  &c.SMTP.Username,
		"SMTP_PASSWORD":  &c.SMTP.Password,
		"SMTP_FROM":      &c.SMTP.From,
	}
	for name, dst := range vars {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SMTP_PORT":         &c.SMTP.Port,
		"NOTIFY_QUEUE_SIZE": &c.Notify.QueueSize,
		"NOTIFY_WORKERS":    &c.Notify.Workers,
	}
	for name, dst := range ints {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", name, v)
		}
		*dst = n
	}
	return nil
}

// Validate checks driver names and the settings each driver needs.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverMongo:
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("store.mongo_uri is required for the mongo driver"))
		}
		if c.Store.MongoDatabase == "" {
			errs = append(errs, errors.New("store.mongo_database is required for the mongo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	switch c.Tickets.Driver {
	case "":
	case DriverSQLite:
		if c.Tickets.SQLitePath == "" {
			errs = append(errs, errors.New("tickets.sqlite_path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ticket driver %q", c.Tickets.Driver))
	}
	if c.Kafka.Brokers != "" && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}
	if c.Notify.QueueSize < 0 || c.Notify.Workers < 0 {
		errs = append(errs, errors.New("notify sizes cannot be negative"))
	}
	return errors.Join(errs...)
}

// DispatcherConfig converts the notify settings.
func (c *Config) DispatcherConfig() notify.DispatcherConfig {
	return notify.DispatcherConfig{
		QueueSize:   c.Notify.QueueSize,
		Workers:     c.Notify.Workers,
		SendTimeout: c.Notify.SendTimeout,
	}
}
