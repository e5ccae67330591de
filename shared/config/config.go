package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	ListenAddr     string        `yaml:"listen_addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	SecureCookies  bool          `yaml:"secure_cookies"`
	LogLevel       string        `yaml:"log_level"`
	LogJSON        bool          `yaml:"log_json"`
	JwtTTL         time.Duration `yaml:"jwt_ttl"`

	Supabase Supabase `yaml:"supabase"`
	Live     Live     `yaml:"live"`
}

type Supabase struct {
	URL           string        `yaml:"url"`
	MomentsTable  string        `yaml:"moments_table"`
	CommentsTable string        `yaml:"comments_table"`
	LikesTable    string        `yaml:"likes_table"`
	Timeout       time.Duration `yaml:"timeout"`
}

// Live holds the live-room tuning knobs. TTLs control how long transient
// overlay items stay in the room before their scheduled removal fires.
type Live struct {
	DanmakuTTL         time.Duration `yaml:"danmaku_ttl"`
	GiftTTL            time.Duration `yaml:"gift_ttl"`
	GiftEnterDuration  time.Duration `yaml:"gift_enter_duration"`
	GiftExitAfter      time.Duration `yaml:"gift_exit_after"`
	PublicScreenLimit  int           `yaml:"public_screen_limit"`
	NetworkProbePeriod time.Duration `yaml:"network_probe_period"`
}

type Private struct {
	JwtKey      string `yaml:"jwt_key"`
	SupabaseKey string `yaml:"supabase_key"`
}

// implementing service interfaces

func (s *Config) JwtKey() string {
	return s.private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL
}

func (s *Config) SupabaseKey() string {
	return s.private.SupabaseKey
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.applyDefaults()
	return cfg
}

// New builds a config from already-populated sections. Used by tests and by
// callers that source settings from somewhere other than the yaml files.
func New(public Public, private Private) *Config {
	cfg := &Config{public, private}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	p := &c.Public
	if p.ListenAddr == "" {
		p.ListenAddr = ":8080"
	}
	if p.JwtTTL == 0 {
		p.JwtTTL = 24 * time.Hour
	}
	if p.Supabase.MomentsTable == "" {
		p.Supabase.MomentsTable = "moments"
	}
	if p.Supabase.CommentsTable == "" {
		p.Supabase.CommentsTable = "comments"
	}
	if p.Supabase.LikesTable == "" {
		p.Supabase.LikesTable = "likes"
	}
	if p.Supabase.Timeout == 0 {
		p.Supabase.Timeout = 30 * time.Second
	}
	l := &p.Live
	if l.DanmakuTTL == 0 {
		l.DanmakuTTL = 8 * time.Second
	}
	if l.GiftTTL == 0 {
		l.GiftTTL = 3 * time.Second
	}
	if l.GiftEnterDuration == 0 {
		l.GiftEnterDuration = 500 * time.Millisecond
	}
	if l.GiftExitAfter == 0 {
		l.GiftExitAfter = 2500 * time.Millisecond
	}
	if l.PublicScreenLimit == 0 {
		l.PublicScreenLimit = 200
	}
	if l.NetworkProbePeriod == 0 {
		l.NetworkProbePeriod = 10 * time.Second
	}
}
