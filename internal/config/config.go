// Package config holds the check invocation settings. Everything here can be
// given as flags; a YAML file exists so cron entries don't have to embed SMTP
// credentials on the command line.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// VCS selects the repository backend: svn, git or github.
	VCS string `yaml:"vcs,omitempty"`

	// Lock enables the advisory lock on the status file.
	Lock bool `yaml:"lock,omitempty"`

	// Timeout bounds the whole invocation including the test command.
	// Zero means no timeout; a hung command then hangs the invocation.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	GitHub GitHub `yaml:"github,omitempty"`
	SMTP   SMTP   `yaml:"smtp,omitempty"`
}

type GitHub struct {
	Ref   string `yaml:"ref,omitempty"`
	Token string `yaml:"token,omitempty"`
}

type SMTP struct {
	Server    string   `yaml:"server,omitempty"`
	Port      int      `yaml:"port,omitempty"`
	Username  string   `yaml:"username,omitempty"`
	Password  string   `yaml:"password,omitempty"`
	From      string   `yaml:"from,omitempty"`
	Receivers []string `yaml:"receivers,omitempty"`
}

// Default returns the baseline settings: Subversion backend, standard SMTP
// submission port, no lock, no timeout.
func Default() Config {
	return Config{
		VCS:  "svn",
		SMTP: SMTP{Port: 25},
	}
}

// Load reads a YAML config file over the defaults. Unknown keys are
// rejected so a typoed setting fails loudly instead of being ignored.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %v", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config file %s: %v", path, err)
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 25
	}
	return cfg, nil
}

// SplitReceivers parses the comma-separated receiver list used on the
// command line.
func SplitReceivers(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
