// Package config loads scanner settings from defaults, an optional YAML
// file and EXPOSURE_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const EnvConfigPath = "EXPOSURE_CONFIG"

type Config struct {
	Server struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"corsOrigins"`
	} `yaml:"server"`

	Resolver struct {
		// Mode is "doh" or "udp".
		Mode    string        `yaml:"mode"`
		URL     string        `yaml:"url"`
		Server  string        `yaml:"server"`
		Timeout time.Duration `yaml:"timeout"`
		Verbose bool          `yaml:"verbose"`
	} `yaml:"resolver"`

	Scan struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"scan"`

	Typosquat struct {
		Candidates int  `yaml:"candidates"`
		MaxProbes  int  `yaml:"maxProbes"`
		BatchSize  int  `yaml:"batchSize"`
		Whois      bool `yaml:"whois"`
		Liveness   bool `yaml:"liveness"`
	} `yaml:"typosquat"`

	CT struct {
		URL        string        `yaml:"url"`
		WindowDays int           `yaml:"windowDays"`
		Limit      int           `yaml:"limit"`
		Timeout    time.Duration `yaml:"timeout"`
		RateLimit  float64       `yaml:"rateLimit"`
	} `yaml:"ct"`

	Breach struct {
		URL       string        `yaml:"url"`
		Limit     int           `yaml:"limit"`
		Timeout   time.Duration `yaml:"timeout"`
		RateLimit float64       `yaml:"rateLimit"`
		CacheTTL  time.Duration `yaml:"cacheTTL"`
	} `yaml:"breach"`

	Dangling struct {
		BatchSize  int      `yaml:"batchSize"`
		HTTPVerify bool     `yaml:"httpVerify"`
		Subdomains []string `yaml:"subdomains"`
	} `yaml:"dangling"`

	Store struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"store"`
}

func Default() *Config {
	c := &Config{}
	c.Server.Addr = ":8080"
	c.Server.CORSOrigins = []string{"*"}

	c.Resolver.Mode = "doh"
	c.Resolver.URL = "https://dns.google/dns-query"
	c.Resolver.Timeout = 5 * time.Second

	c.Scan.Timeout = 45 * time.Second

	c.Typosquat.Candidates = 60
	c.Typosquat.MaxProbes = 40
	c.Typosquat.BatchSize = 10

	c.CT.URL = "https://crt.sh/"
	c.CT.WindowDays = 90
	c.CT.Limit = 20
	c.CT.Timeout = 20 * time.Second
	c.CT.RateLimit = 1

	c.Breach.URL = "https://haveibeenpwned.com/api/v3/breaches"
	c.Breach.Limit = 15
	c.Breach.Timeout = 15 * time.Second
	c.Breach.RateLimit = 1
	c.Breach.CacheTTL = time.Hour

	c.Dangling.BatchSize = 10
	c.Dangling.HTTPVerify = true

	c.Store.BucketName = "exposure-scans"
	c.Store.UseSSL = true
	return c
}

// Load returns the defaults overlaid with the YAML file at path (when path
// is not empty) and then with the environment.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return c, c.Validate()
}

func (c *Config) Validate() error {
	switch c.Resolver.Mode {
	case "doh", "udp":
	default:
		return fmt.Errorf("resolver.mode must be doh or udp, got %q", c.Resolver.Mode)
	}
	if c.Typosquat.MaxProbes > c.Typosquat.Candidates {
		return fmt.Errorf("typosquat.maxProbes (%d) exceeds typosquat.candidates (%d)", c.Typosquat.MaxProbes, c.Typosquat.Candidates)
	}
	if c.Typosquat.BatchSize < 1 || c.Dangling.BatchSize < 1 {
		return fmt.Errorf("batch sizes must be positive")
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	strs := map[string]*string{
		"EXPOSURE_ADDR":             &c.Server.Addr,
		"EXPOSURE_RESOLVER_MODE":    &c.Resolver.Mode,
		"EXPOSURE_RESOLVER_URL":     &c.Resolver.URL,
		"EXPOSURE_RESOLVER_SERVER":  &c.Resolver.Server,
		"EXPOSURE_CT_URL":           &c.CT.URL,
		"EXPOSURE_BREACH_URL":       &c.Breach.URL,
		"EXPOSURE_STORE_ENDPOINT":   &c.Store.Endpoint,
		"EXPOSURE_STORE_ACCESS_KEY": &c.Store.AccessKey,
		"EXPOSURE_STORE_SECRET_KEY": &c.Store.SecretKey,
		"EXPOSURE_STORE_BUCKET":     &c.Store.BucketName,
		"EXPOSURE_STORE_REGION":     &c.Store.Region,
	}
	for k, p := range strs {
		if v, ok := lookup(k); ok {
			*p = v
		}
	}

	durations := map[string]*time.Duration{
		"EXPOSURE_RESOLVER_TIMEOUT": &c.Resolver.Timeout,
		"EXPOSURE_SCAN_TIMEOUT":     &c.Scan.Timeout,
	}
	for k, p := range durations {
		if v, ok := lookup(k); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			*p = d
		}
	}

	ints := map[string]*int{
		"EXPOSURE_TYPOSQUAT_CANDIDATES": &c.Typosquat.Candidates,
		"EXPOSURE_TYPOSQUAT_MAX_PROBES": &c.Typosquat.MaxProbes,
		"EXPOSURE_TYPOSQUAT_BATCH_SIZE": &c.Typosquat.BatchSize,
		"EXPOSURE_DANGLING_BATCH_SIZE":  &c.Dangling.BatchSize,
	}
	for k, p := range ints {
		if v, ok := lookup(k); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			*p = n
		}
	}

	bools := map[string]*bool{
		"EXPOSURE_RESOLVER_VERBOSE":   &c.Resolver.Verbose,
		"EXPOSURE_TYPOSQUAT_WHOIS":    &c.Typosquat.Whois,
		"EXPOSURE_TYPOSQUAT_LIVENESS": &c.Typosquat.Liveness,
		"EXPOSURE_DANGLING_HTTP":      &c.Dangling.HTTPVerify,
		"EXPOSURE_STORE_USE_SSL":      &c.Store.UseSSL,
	}
	for k, p := range bools {
		if v, ok := lookup(k); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			*p = b
		}
	}

	if v, ok := lookup("EXPOSURE_CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}
	if v, ok := lookup("EXPOSURE_DANGLING_SUBDOMAINS"); ok {
		c.Dangling.Subdomains = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	out := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
