// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package config loads the enamel service configuration from a YAML
// file.  A typical file looks like
//
//	api:
//	  bind_address: 0.0.0.0
//	  bind_port: 8989
//	database:
//	  connection: "postgres://enamel@localhost/enamel"
//	microversion:
//	  min_version: "0.9"
//	  max_version: latest
//	log:
//	  level: info
//	  requests: false
//
// Every key is optional; missing keys keep their Default() values.
package config

import (
	"fmt"
	"io/ioutil"
	"net"
	"reflect"
	"strconv"

	"github.com/diffeo/go-enamel/microversion"
	"github.com/diffeo/go-enamel/restdata"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Config is the complete service configuration.
type Config struct {
	API          API          `mapstructure:"api"`
	Database     Database     `mapstructure:"database"`
	Microversion Microversion `mapstructure:"microversion"`
	Log          Log          `mapstructure:"log"`

	// Unused lists keys in the file that did not match any
	// setting, such as misspellings.
	Unused []string `mapstructure:"-"`
}

// API configures the HTTP listener.
type API struct {
	BindAddress string `mapstructure:"bind_address"`
	BindPort    int    `mapstructure:"bind_port"`
}

// Database configures the storage backend.  An empty connection
// string means in-memory storage.
type Database struct {
	Connection string `mapstructure:"connection"`
}

// Microversion sets the administrative range of versions served.
// Empty values mean the catalog's own bounds.
type Microversion struct {
	MinVersion string `mapstructure:"min_version"`
	MaxVersion string `mapstructure:"max_version"`
}

// Log configures logging.
type Log struct {
	Level    string `mapstructure:"level"`
	Requests bool   `mapstructure:"requests"`
}

// Default returns the configuration used when there is no file.
func Default() Config {
	return Config{
		API: API{
			BindAddress: "0.0.0.0",
			BindPort:    8989,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads a YAML configuration file on top of the defaults.
func Load(filename string) (Config, error) {
	bytes, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, err
	}
	return Parse(bytes)
}

// Parse decodes YAML configuration text on top of the defaults.
func Parse(bytes []byte) (Config, error) {
	var raw map[string]interface{}
	err := yaml.Unmarshal(bytes, &raw)
	if err != nil {
		return Config{}, err
	}

	config := Default()
	var metadata mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       rejectFloatStrings,
		Metadata:         &metadata,
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return Config{}, err
	}
	err = decoder.Decode(raw)
	if err != nil {
		return Config{}, err
	}
	config.Unused = metadata.Unused
	return config, nil
}

// rejectFloatStrings refuses to turn a YAML float into a string
// setting.  An unquoted "1.0" arrives as the float 1 and "0.10" as
// 0.1, so neither can be read back as the version that was written.
func rejectFloatStrings(from, to reflect.Kind, data interface{}) (interface{}, error) {
	if to == reflect.String && (from == reflect.Float32 || from == reflect.Float64) {
		return nil, fmt.Errorf("numeric value %v must be quoted to be used as a string", data)
	}
	return data, nil
}

// Bind returns the host:port the API should listen on.
func (c Config) Bind() string {
	return net.JoinHostPort(c.API.BindAddress, strconv.Itoa(c.API.BindPort))
}

// Catalog builds the microversion catalog for the API, restricted to
// the configured administrative range.
func (c Config) Catalog() (*microversion.Catalog, error) {
	catalog, err := microversion.NewCatalog(restdata.ServiceType, restdata.Versions)
	if err != nil {
		return nil, err
	}
	return catalog.Restrict(c.Microversion.MinVersion, c.Microversion.MaxVersion)
}

// LogLevel parses the configured log level.
func (c Config) LogLevel() (logrus.Level, error) {
	return logrus.ParseLevel(c.Log.Level)
}
