// Package config loads the YAML runtime configuration and applies defaults
// for anything the file leaves unset.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	Sources SourcesConfig
	Cache   CacheConfig
	Server  ServerConfig
	Session SessionConfig
	Verify  VerifyConfig
}

// SourcesConfig holds the upstream endpoint candidate lists, in fallback
// priority order, plus the per-attempt deadline.
type SourcesConfig struct {
	RequestTimeout     time.Duration
	RateLimitRPS       float64
	RateLimitBurst     int
	LeetCodeProblems   []string
	LeetCodeContests   []string
	CodeforcesProblems []string
	CodeforcesContests []string
}

// CacheConfig controls the aggregate snapshot cache.
type CacheConfig struct {
	TTL       time.Duration
	RedisAddr string // empty = in-memory only
	RedisDB   int
	KeyPrefix string
}

// ServerConfig holds the HTTP API listener settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SessionConfig holds the training session parameters.
type SessionConfig struct {
	Duration       time.Duration
	PointsPerSolve int
}

// VerifyConfig holds submission-verification settings.
type VerifyConfig struct {
	Window          time.Duration
	SubmissionCount int
	LeetCodeMirror  string
	CodeforcesAPI   string
}

// CORS proxy prefixes tried after the direct endpoints, mirroring the
// upstream access paths browsers are forced through.
const (
	proxyCorsProxy  = "https://corsproxy.io/?"
	proxyAllOrigins = "https://api.allorigins.win/raw?url="
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Sources: SourcesConfig{
			RequestTimeout: 8 * time.Second,
			RateLimitRPS:   2,
			RateLimitBurst: 4,
			LeetCodeProblems: []string{
				"https://zerotrac.github.io/leetcode_problem_rating/data.json",
				proxyCorsProxy + "https://zerotrac.github.io/leetcode_problem_rating/data.json",
				proxyAllOrigins + "https://zerotrac.github.io/leetcode_problem_rating/data.json",
			},
			LeetCodeContests: []string{
				"https://leetcode.com/api/contest/",
				proxyCorsProxy + "https://leetcode.com/api/contest/",
			},
			CodeforcesProblems: []string{
				"https://codeforces.com/api/problemset.problems",
				proxyCorsProxy + "https://codeforces.com/api/problemset.problems",
				proxyAllOrigins + "https://codeforces.com/api/problemset.problems",
			},
			CodeforcesContests: []string{
				"https://codeforces.com/api/contest.list",
				proxyCorsProxy + "https://codeforces.com/api/contest.list",
				proxyAllOrigins + "https://codeforces.com/api/contest.list",
			},
		},
		Cache: CacheConfig{
			TTL:       5 * time.Minute,
			KeyPrefix: "gymrun:",
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Session: SessionConfig{
			Duration:       2 * time.Hour,
			PointsPerSolve: 100,
		},
		Verify: VerifyConfig{
			Window:          24 * time.Hour,
			SubmissionCount: 1000,
			LeetCodeMirror:  "https://leetcode-api-faisalshohag.vercel.app",
			CodeforcesAPI:   "https://codeforces.com/api",
		},
	}
}

// fileConfig mirrors Config for YAML parsing. Durations arrive as strings
// ("8s", "5m") and are validated during the overlay.
type fileConfig struct {
	Sources struct {
		RequestTimeout     string   `yaml:"request_timeout"`
		RateLimitRPS       float64  `yaml:"rate_limit_rps"`
		RateLimitBurst     int      `yaml:"rate_limit_burst"`
		LeetCodeProblems   []string `yaml:"leetcode_problems"`
		LeetCodeContests   []string `yaml:"leetcode_contests"`
		CodeforcesProblems []string `yaml:"codeforces_problems"`
		CodeforcesContests []string `yaml:"codeforces_contests"`
	} `yaml:"sources"`
	Cache struct {
		TTL       string `yaml:"ttl"`
		RedisAddr string `yaml:"redis_addr"`
		RedisDB   int    `yaml:"redis_db"`
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"cache"`
	Server struct {
		Host         string `yaml:"host"`
		Port         int    `yaml:"port"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
		IdleTimeout  string `yaml:"idle_timeout"`
	} `yaml:"server"`
	Session struct {
		Duration       string `yaml:"duration"`
		PointsPerSolve int    `yaml:"points_per_solve"`
	} `yaml:"session"`
	Verify struct {
		Window          string `yaml:"window"`
		SubmissionCount int    `yaml:"submission_count"`
		LeetCodeMirror  string `yaml:"leetcode_mirror"`
		CodeforcesAPI   string `yaml:"codeforces_api"`
	} `yaml:"verify"`
}

// Load reads a YAML config file and fills defaults for anything unset. A
// missing path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.merge(file); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// merge overlays set file values onto the defaults.
func (c *Config) merge(f fileConfig) error {
	if err := overlayDuration(&c.Sources.RequestTimeout, "sources.request_timeout", f.Sources.RequestTimeout); err != nil {
		return err
	}
	if f.Sources.RateLimitRPS > 0 {
		c.Sources.RateLimitRPS = f.Sources.RateLimitRPS
	}
	if f.Sources.RateLimitBurst > 0 {
		c.Sources.RateLimitBurst = f.Sources.RateLimitBurst
	}
	if len(f.Sources.LeetCodeProblems) > 0 {
		c.Sources.LeetCodeProblems = f.Sources.LeetCodeProblems
	}
	if len(f.Sources.LeetCodeContests) > 0 {
		c.Sources.LeetCodeContests = f.Sources.LeetCodeContests
	}
	if len(f.Sources.CodeforcesProblems) > 0 {
		c.Sources.CodeforcesProblems = f.Sources.CodeforcesProblems
	}
	if len(f.Sources.CodeforcesContests) > 0 {
		c.Sources.CodeforcesContests = f.Sources.CodeforcesContests
	}

	if err := overlayDuration(&c.Cache.TTL, "cache.ttl", f.Cache.TTL); err != nil {
		return err
	}
	if f.Cache.RedisAddr != "" {
		c.Cache.RedisAddr = f.Cache.RedisAddr
		c.Cache.RedisDB = f.Cache.RedisDB
	}
	if f.Cache.KeyPrefix != "" {
		c.Cache.KeyPrefix = f.Cache.KeyPrefix
	}

	if f.Server.Host != "" {
		c.Server.Host = f.Server.Host
	}
	if f.Server.Port > 0 {
		c.Server.Port = f.Server.Port
	}
	if err := overlayDuration(&c.Server.ReadTimeout, "server.read_timeout", f.Server.ReadTimeout); err != nil {
		return err
	}
	if err := overlayDuration(&c.Server.WriteTimeout, "server.write_timeout", f.Server.WriteTimeout); err != nil {
		return err
	}
	if err := overlayDuration(&c.Server.IdleTimeout, "server.idle_timeout", f.Server.IdleTimeout); err != nil {
		return err
	}

	if err := overlayDuration(&c.Session.Duration, "session.duration", f.Session.Duration); err != nil {
		return err
	}
	if f.Session.PointsPerSolve > 0 {
		c.Session.PointsPerSolve = f.Session.PointsPerSolve
	}

	if err := overlayDuration(&c.Verify.Window, "verify.window", f.Verify.Window); err != nil {
		return err
	}
	if f.Verify.SubmissionCount > 0 {
		c.Verify.SubmissionCount = f.Verify.SubmissionCount
	}
	if f.Verify.LeetCodeMirror != "" {
		c.Verify.LeetCodeMirror = f.Verify.LeetCodeMirror
	}
	if f.Verify.CodeforcesAPI != "" {
		c.Verify.CodeforcesAPI = f.Verify.CodeforcesAPI
	}
	return nil
}

func overlayDuration(dst *time.Duration, key, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	if d > 0 {
		*dst = d
	}
	return nil
}
