// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/diffeo/go-enamel/microversion"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "0.0.0.0:8989", c.Bind())
	assert.Equal(t, "", c.Database.Connection)

	level, err := c.LogLevel()
	if assert.NoError(t, err) {
		assert.Equal(t, logrus.InfoLevel, level)
	}

	catalog, err := c.Catalog()
	if assert.NoError(t, err) {
		assert.Equal(t, "0.1", catalog.MinVersionString())
		assert.Equal(t, "1.0", catalog.MaxVersionString())
		assert.Equal(t, "OpenStack-enamel-API-Version", catalog.Header())
	}
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
api:
  bind_address: 127.0.0.1
  bind_port: "9000"
database:
  connection: "postgres://enamel@localhost/enamel"
microversion:
  min_version: "0.9"
log:
  level: debug
  requests: true
  colour: blue
`))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", c.Bind())
	assert.Equal(t, "postgres://enamel@localhost/enamel", c.Database.Connection)
	assert.True(t, c.Log.Requests)
	assert.Equal(t, []string{"log.colour"}, c.Unused)

	level, err := c.LogLevel()
	if assert.NoError(t, err) {
		assert.Equal(t, logrus.DebugLevel, level)
	}

	catalog, err := c.Catalog()
	if assert.NoError(t, err) {
		low, high := catalog.Range()
		assert.Equal(t, microversion.Version{Major: 0, Minor: 9}, low)
		assert.Equal(t, microversion.Version{Major: 1, Minor: 0}, high)
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	c, err := Parse([]byte("database:\n  connection: dbname=enamel\n"))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8989", c.Bind())
	assert.Equal(t, "info", c.Log.Level)
	assert.Empty(t, c.Unused)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("api: [this is not a map"))
	assert.Error(t, err)

	_, err = Parse([]byte("api:\n  bind_port: lots\n"))
	assert.Error(t, err)
}

func TestParseUnquotedVersion(t *testing.T) {
	_, err := Parse([]byte("microversion:\n  max_version: 1.0\n"))
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "must be quoted")
	}

	_, err = Parse([]byte("microversion:\n  min_version: 0.10\n"))
	assert.Error(t, err)

	c, err := Parse([]byte("microversion:\n  max_version: \"1.0\"\n"))
	if assert.NoError(t, err) {
		assert.Equal(t, "1.0", c.Microversion.MaxVersion)
	}
}

func TestBadRange(t *testing.T) {
	c := Default()
	c.Microversion.MinVersion = "1.0"
	c.Microversion.MaxVersion = "0.1"
	_, err := c.Catalog()
	assert.Error(t, err)

	c.Microversion.MinVersion = "0.5"
	c.Microversion.MaxVersion = ""
	_, err = c.Catalog()
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "enamel-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	filename := filepath.Join(dir, "enamel.yaml")
	require.NoError(t, ioutil.WriteFile(filename, []byte("log:\n  level: warning\n"), 0644))
	c, err := Load(filename)
	if assert.NoError(t, err) {
		assert.Equal(t, "warning", c.Log.Level)
	}

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
