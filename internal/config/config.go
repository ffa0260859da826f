package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/loopline-dev/loopline/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "loopline.json"

	// EnvFileName is the name of the optional environment overrides file.
	EnvFileName = ".env"

	// DefaultBaseURL is the default backend base URL.
	DefaultBaseURL = "http://localhost:8000/api/v1"

	// DefaultStorageDriver is the default credential storage backend.
	DefaultStorageDriver = "file"

	// DefaultDevPort is the default dev server port.
	DefaultDevPort = 8000

	// DefaultDevHost is the default dev server host.
	DefaultDevHost = "localhost"
)

// Config represents the complete loopline.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// BaseURL is the backend API base URL.
	BaseURL string `json:"baseUrl,omitempty"`

	// Storage contains credential storage configuration.
	Storage StorageConfig `json:"storage,omitempty"`

	// Paths contains view path configuration.
	Paths PathsConfig `json:"paths,omitempty"`

	// Cookie contains cookie mirror configuration.
	Cookie CookieConfig `json:"cookie,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// StorageConfig contains credential storage settings.
type StorageConfig struct {
	// Driver selects the backend: "memory", "file", or "sqlite".
	Driver string `json:"driver,omitempty"`

	// Path is the storage location: a directory for the file driver, a
	// database file for sqlite. Ignored by the memory driver.
	Path string `json:"path,omitempty"`
}

// PathsConfig contains view path settings.
type PathsConfig struct {
	// Login is the login view path.
	Login string `json:"login,omitempty"`

	// Home is the default post-login destination.
	Home string `json:"home,omitempty"`
}

// CookieConfig contains cookie mirror settings.
type CookieConfig struct {
	// MaxAge is the cookie lifetime in seconds.
	MaxAge int `json:"maxAge,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Secret signs the dev server's tokens.
	Secret string `json:"secret,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Version: "0.1.0",
		BaseURL: DefaultBaseURL,
		Storage: StorageConfig{
			Driver: DefaultStorageDriver,
			Path:   defaultStoragePath(),
		},
		Paths: PathsConfig{
			Login: "/login",
			Home:  "/dashboard",
		},
		Cookie: CookieConfig{
			MaxAge: 3600,
		},
		Dev: DevConfig{
			Port: DefaultDevPort,
			Host: DefaultDevHost,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// loopline.json in the directory and applies .env overrides on top.
func Load(dir string) (*Config, error) {
	cfg, err := LoadFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(dir)
	return cfg, nil
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Run 'loopline init' to create one")
		}
		return nil, errors.New("E102").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E102").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E104").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E104").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultStorageDriver
	}
	if c.Storage.Path == "" && c.Storage.Driver != "memory" {
		c.Storage.Path = defaultStoragePath()
	}
	if c.Paths.Login == "" {
		c.Paths.Login = "/login"
	}
	if c.Paths.Home == "" {
		c.Paths.Home = "/dashboard"
	}
	if c.Cookie.MaxAge == 0 {
		c.Cookie.MaxAge = 3600
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultDevPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultDevHost
	}
}

// applyEnv loads .env from dir, if present, then applies LOOPLINE_*
// environment variables on top of the file values.
func (c *Config) applyEnv(dir string) {
	// Already-set process variables win over .env entries.
	_ = godotenv.Load(filepath.Join(dir, EnvFileName))

	if v := os.Getenv("LOOPLINE_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("LOOPLINE_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("LOOPLINE_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("LOOPLINE_DEV_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Dev.Port = port
		}
	}
	if v := os.Getenv("LOOPLINE_DEV_SECRET"); v != "" {
		c.Dev.Secret = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("E103").
			WithDetail("Port must be between 0 and 65535")
	}
	switch c.Storage.Driver {
	case "memory", "file", "sqlite":
	default:
		return errors.New("E122").
			WithDetail("Unknown storage driver " + strconv.Quote(c.Storage.Driver))
	}
	if c.Cookie.MaxAge < 0 {
		return errors.New("E103").
			WithDetail("Cookie maxAge must not be negative")
	}
	return nil
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL for the dev server API.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress() + "/api/v1"
}

// StoragePath returns the absolute credential storage path.
func (c *Config) StoragePath() string {
	if c.Storage.Path == "" || filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(c.Dir(), c.Storage.Path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing loopline.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E101").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'loopline init' to create one")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".loopline"
	}
	return filepath.Join(home, ".loopline")
}
