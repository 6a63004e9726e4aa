package config

import (
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "POLLCREATOR"

var DefaultLanguages = []string{"en", "de", "fr", "es", "it", "nl", "pt"}

type Config struct {
	Addr        string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	Debug       bool

	// Poll API client
	APITimeout     time.Duration
	MaxConnections int
	MaxIdleConns   int
	MaxBodySize    int64

	MaxBatchSize  int
	CacheEnabled  bool
	CacheTTL      time.Duration
	CacheMaxItems int

	// validation and translation
	Languages       []string
	FactSheetTypes  []string
	MapIDsToUUID    bool
	MaxNestingDepth int
	MaxChainDepth   int
}

// BindFlags declares the configuration flags on fs and binds them to v.
// Every flag can also be set through the environment, e.g. --cache-ttl as
// POLLCREATOR_CACHE_TTL.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	fs.String("host", "0.0.0.0", "listen host name")
	fs.Uint("port", 8000, "listen port number")
	fs.String("db-url", "pollcreator.sqlite", "path to SQLite3 DB file")
	fs.String("token-secret", "", "secret key for token encryption and decryption")
	fs.Uint("token-ttl", 120, "token TTL in seconds")
	fs.Bool("debug", false, "log at DEBUG level")

	fs.Duration("api-timeout", 30*time.Second, "timeout of Poll API calls")
	fs.Int("max-connections", 10, "maximum connections to the Poll API")
	fs.Int("max-keepalive-connections", 5, "maximum idle connections kept to the Poll API")
	fs.Int64("max-body-size", 4<<20, "maximum size in bytes of a Poll API response")

	fs.Int("max-batch-size", 25, "maximum number of surveys in a batch")
	fs.Bool("cache-enabled", false, "cache fetched polls")
	fs.Duration("cache-ttl", 300*time.Second, "lifetime of cached polls")
	fs.Int("cache-max-items", 128, "maximum number of cached polls")

	fs.StringSlice("languages", DefaultLanguages, "accepted survey languages, empty accepts any")
	fs.StringSlice("fact-sheet-types", nil, "accepted fact sheet types, empty accepts any")
	fs.Bool("map-ids-to-uuid", false, "rewrite question and option ids into UUIDs on submission")
	fs.Int("max-nesting-depth", 8, "maximum depth of nested questions")
	fs.Int("max-chain-depth", 0, "maximum length of dependency chains, 0 for unbounded")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v.BindPFlags(fs)
}

// Load reads the configuration bound by BindFlags.
func Load(v *viper.Viper) (cfg Config, err error) {
	port := v.GetUint("port")
	if port > 65535 {
		return cfg, errors.New("invalid parameter --port: " + strconv.Itoa(int(port)))
	}
	cfg.Addr = net.JoinHostPort(v.GetString("host"), strconv.Itoa(int(port)))
	cfg.DBUrl = v.GetString("db-url")
	cfg.TokenSecret = v.GetString("token-secret")
	cfg.TokenTTL = time.Duration(v.GetUint("token-ttl")) * time.Second
	cfg.Debug = v.GetBool("debug")

	cfg.APITimeout = v.GetDuration("api-timeout")
	cfg.MaxConnections = v.GetInt("max-connections")
	cfg.MaxIdleConns = v.GetInt("max-keepalive-connections")
	cfg.MaxBodySize = v.GetInt64("max-body-size")

	cfg.MaxBatchSize = v.GetInt("max-batch-size")
	cfg.CacheEnabled = v.GetBool("cache-enabled")
	cfg.CacheTTL = v.GetDuration("cache-ttl")
	cfg.CacheMaxItems = v.GetInt("cache-max-items")

	cfg.Languages = splitList(v.GetStringSlice("languages"))
	cfg.FactSheetTypes = splitList(v.GetStringSlice("fact-sheet-types"))
	cfg.MapIDsToUUID = v.GetBool("map-ids-to-uuid")
	cfg.MaxNestingDepth = v.GetInt("max-nesting-depth")
	cfg.MaxChainDepth = v.GetInt("max-chain-depth")

	if cfg.MaxBatchSize < 1 {
		err = errors.New("invalid parameter --max-batch-size: must be positive")
	}
	return
}

// RequireServer checks the parameters only the HTTP server needs.
func (cfg Config) RequireServer() error {
	if cfg.TokenSecret == "" {
		return errors.New("missing parameter --token-secret")
	}
	return nil
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

// splitList accepts both repeated values and comma separated lists, as
// environment variables only carry the latter.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
