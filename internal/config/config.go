// Package config provides configuration loading and management for the asset librarian.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/asset-librarian/internal/telemetry"
	"github.com/stacklok/asset-librarian/internal/validators"
)

// EnvPrefix is the prefix for environment variables read by the CLI
const EnvPrefix = "ASSET_LIBRARIAN"

const (
	// SourceTypeGit is the type for catalogs stored in Git repositories
	SourceTypeGit = "git"

	// SourceTypeAPI is the type for catalogs fetched from HTTP endpoints
	SourceTypeAPI = "api"

	// SourceTypeFile is the type for catalogs stored in local files
	SourceTypeFile = "file"
)

const (
	// FilterKindText selects a text filter
	FilterKindText = "text"

	// FilterKindEvent selects an event filter
	FilterKindEvent = "event"

	// FilterKindSoundBankType selects a sound bank type filter
	FilterKindSoundBankType = "soundBankType"
)

const (
	// TextTargetName matches the short name of the asset
	TextTargetName = "name"

	// TextTargetSystemPath matches the on-disk path of the asset
	TextTargetSystemPath = "systemPath"

	// TextTargetPathInWwise matches the authoring tool path of a sound bank
	TextTargetPathInWwise = "pathInWwise"
)

const (
	// SoundBankKindUser selects user-defined sound banks
	SoundBankKindUser = "user"

	// SoundBankKindAuto selects auto-defined sound banks
	SoundBankKindAuto = "auto"
)

const (
	// AuthModeAnonymous serves every request without authentication
	AuthModeAnonymous = "anonymous"

	// AuthModeJWT requires a bearer token signed by one of the configured providers
	AuthModeJWT = "jwt"
)

const (
	// DefaultName is the run name used when none is configured
	DefaultName = "default"

	// DefaultOutputPath is where partition results are written by default
	DefaultOutputPath = "./data"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// Name identifies this partition run in status files and metrics.
	// Defaults to "default" if not specified
	Name string `yaml:"name,omitempty"`

	// Catalog is the source of the asset catalog
	Catalog CatalogConfig `yaml:"catalog"`

	// SyncPolicy controls how often the catalog is re-partitioned by serve
	SyncPolicy *SyncPolicyConfig `yaml:"syncPolicy,omitempty"`

	// Output controls where partition results are written
	Output *OutputConfig `yaml:"output,omitempty"`

	// SharedFilters are reusable filter groups referenced by name from libraries
	SharedFilters []SharedFilterConfig `yaml:"sharedFilters,omitempty"`

	// Libraries are the asset libraries in priority order, highest first
	Libraries []LibraryConfig `yaml:"libraries"`

	// Telemetry configures OpenTelemetry metrics and tracing
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`

	// Auth protects the library API. Nil means anonymous access.
	Auth *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig defines authentication for the library API
type AuthConfig struct {
	// Mode is anonymous (default) or jwt
	Mode string `yaml:"mode,omitempty"`

	// Realm is reported in WWW-Authenticate challenges
	Realm string `yaml:"realm,omitempty"`

	// PublicPaths bypass authentication in addition to the health endpoints.
	// Each entry matches that exact path only, not the routes below it.
	PublicPaths []string `yaml:"publicPaths,omitempty"`

	// Providers are tried in order until one accepts the token
	Providers []JWTProviderConfig `yaml:"providers,omitempty"`
}

// JWTProviderConfig defines one token issuer sharing an HMAC key with the server
type JWTProviderConfig struct {
	Name     string `yaml:"name"`
	Issuer   string `yaml:"issuer,omitempty"`
	Audience string `yaml:"audience,omitempty"`

	// SecretFile holds the HMAC signing key so it never appears in the configuration
	SecretFile string `yaml:"secretFile"`
}

// GetSecret reads the signing key, trimming surrounding whitespace
func (p *JWTProviderConfig) GetSecret() ([]byte, error) {
	if p.SecretFile == "" {
		return nil, fmt.Errorf("secretFile is required")
	}
	data, err := os.ReadFile(p.SecretFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret file: %w", err)
	}
	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return nil, fmt.Errorf("secret file %s is empty", p.SecretFile)
	}
	return []byte(secret), nil
}

// GetMode returns the auth mode, defaulting to anonymous
func (a *AuthConfig) GetMode() string {
	if a == nil || a.Mode == "" {
		return AuthModeAnonymous
	}
	return a.Mode
}

// CatalogConfig defines the catalog data source (only one should be set)
type CatalogConfig struct {
	Git  *GitConfig  `yaml:"git,omitempty"`
	API  *APIConfig  `yaml:"api,omitempty"`
	File *FileConfig `yaml:"file,omitempty"`
}

// GitConfig defines Git source settings
type GitConfig struct {
	// Repository is the Git repository URL (HTTP/HTTPS/SSH)
	Repository string `yaml:"repository"`

	// Branch is the Git branch to use (mutually exclusive with Tag and Commit)
	Branch string `yaml:"branch,omitempty"`

	// Tag is the Git tag to use (mutually exclusive with Branch and Commit)
	Tag string `yaml:"tag,omitempty"`

	// Commit is the Git commit SHA to use (mutually exclusive with Branch and Tag)
	Commit string `yaml:"commit,omitempty"`

	// Path is the path to the catalog metadata file within the repository.
	// Defaults to "SoundbanksInfo.json".
	Path string `yaml:"path,omitempty"`

	// Auth configures HTTP basic authentication for private repositories
	Auth *GitAuthConfig `yaml:"auth,omitempty"`
}

// GitAuthConfig holds Git HTTP credentials. The password is read from a file
// so it never appears in the configuration.
type GitAuthConfig struct {
	Username     string `yaml:"username"`
	PasswordFile string `yaml:"passwordFile"`
}

// GetPassword reads the password file, trimming surrounding whitespace
func (a *GitAuthConfig) GetPassword() (string, error) {
	if a.PasswordFile == "" {
		return "", fmt.Errorf("passwordFile is required")
	}
	data, err := os.ReadFile(a.PasswordFile)
	if err != nil {
		return "", fmt.Errorf("failed to read password file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// APIConfig defines an HTTP catalog source
type APIConfig struct {
	// Endpoint is the URL returning the catalog metadata document
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds each request attempt, e.g. "30s"
	Timeout string `yaml:"timeout,omitempty"`
}

// GetTimeout returns the request timeout, or zero for the client default
func (a *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// FileConfig defines local file source configuration
type FileConfig struct {
	// Path is the path to the catalog metadata file on the local filesystem
	Path string `yaml:"path"`
}

// SyncPolicyConfig defines synchronization settings
type SyncPolicyConfig struct {
	Interval string `yaml:"interval"`
}

// OutputConfig defines where results are persisted
type OutputConfig struct {
	Path string `yaml:"path"`
}

// SharedFilterConfig is a named, reusable group of filters
type SharedFilterConfig struct {
	Name          string          `yaml:"name"`
	Filters       []*FilterConfig `yaml:"filters,omitempty"`
	SharedFilters []string        `yaml:"sharedFilters,omitempty"`
}

// LibraryConfig defines one asset library
type LibraryConfig struct {
	Name string `yaml:"name"`

	// Fallthrough leaves matched assets available to lower priority libraries
	Fallthrough bool `yaml:"fallthrough,omitempty"`

	// PackageAssets controls whether the library's assets are written to the output.
	// A library with packageAssets set to false only claims assets. Defaults to true.
	PackageAssets *bool `yaml:"packageAssets,omitempty"`

	// Filters are applied first, in order. A null entry always matches.
	Filters []*FilterConfig `yaml:"filters,omitempty"`

	// SharedFilters are names of shared filter groups applied after Filters
	SharedFilters []string `yaml:"sharedFilters,omitempty"`
}

// ShouldPackageAssets returns whether the library's matches are written to the output
func (l *LibraryConfig) ShouldPackageAssets() bool {
	return l.PackageAssets == nil || *l.PackageAssets
}

// FilterConfig defines a single filter (only one should be set)
type FilterConfig struct {
	Text          *TextFilterConfig          `yaml:"text,omitempty"`
	Event         *EventFilterConfig         `yaml:"event,omitempty"`
	SoundBankType *SoundBankTypeFilterConfig `yaml:"soundBankType,omitempty"`
}

// TextFilterConfig matches asset names or paths against a pattern
type TextFilterConfig struct {
	// Pattern is a whitespace separated list of globs, or a regular expression.
	// Defaults to "*".
	Pattern *string `yaml:"pattern,omitempty"`

	// Target is one of name, systemPath or pathInWwise. Defaults to name.
	Target string `yaml:"target,omitempty"`

	CaseSensitive bool `yaml:"caseSensitive,omitempty"`
	Exclusion     bool `yaml:"exclusion,omitempty"`
	Regex         bool `yaml:"regex,omitempty"`

	// SoundBanks and Media select the asset types the filter considers. Both default to true.
	SoundBanks *bool `yaml:"soundBanks,omitempty"`
	Media      *bool `yaml:"media,omitempty"`
}

// EventFilterConfig selects the assets referenced by matching events
type EventFilterConfig struct {
	// Pattern is a whitespace separated list of globs, or a regular expression.
	// Defaults to "*".
	Pattern *string `yaml:"pattern,omitempty"`

	CaseSensitive bool `yaml:"caseSensitive,omitempty"`
	Regex         bool `yaml:"regex,omitempty"`

	// SingleReferenceOnly keeps only the assets no unmatched event references
	SingleReferenceOnly bool `yaml:"singleReferenceOnly,omitempty"`

	SoundBanks *bool `yaml:"soundBanks,omitempty"`
	Media      *bool `yaml:"media,omitempty"`
}

// SoundBankTypeFilterConfig selects user-defined or auto-defined banks
type SoundBankTypeFilterConfig struct {
	// Kind is either user or auto. Defaults to user.
	Kind string `yaml:"kind,omitempty"`
}

// GetKind returns which filter variant is configured
func (f *FilterConfig) GetKind() string {
	if f.Text != nil {
		return FilterKindText
	}
	if f.Event != nil {
		return FilterKindEvent
	}
	if f.SoundBankType != nil {
		return FilterKindSoundBankType
	}
	return ""
}

// BoolOrDefault dereferences an optional flag
func BoolOrDefault(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// PatternOrDefault dereferences an optional pattern, defaulting to "*"
func PatternOrDefault(p *string) string {
	if p == nil {
		return "*"
	}
	return *p
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse parses and validates configuration from YAML bytes
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetName returns the run name, using "default" if not specified
func (c *Config) GetName() string {
	if c.Name == "" {
		return DefaultName
	}
	return c.Name
}

// GetOutputPath returns the output directory
func (c *Config) GetOutputPath() string {
	if c.Output == nil || c.Output.Path == "" {
		return DefaultOutputPath
	}
	return c.Output.Path
}

// GetSyncInterval returns the parsed sync interval, or zero when unset
func (c *Config) GetSyncInterval() time.Duration {
	if c.SyncPolicy == nil || c.SyncPolicy.Interval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.SyncPolicy.Interval)
	if err != nil {
		return 0
	}
	return d
}

// GetType returns the inferred type of the catalog source based on which field is present
func (c *CatalogConfig) GetType() string {
	if c.Git != nil {
		return SourceTypeGit
	}
	if c.API != nil {
		return SourceTypeAPI
	}
	if c.File != nil {
		return SourceTypeFile
	}
	return ""
}

// Library returns the library with the given name, or nil
func (c *Config) Library(name string) *LibraryConfig {
	for i := range c.Libraries {
		if c.Libraries[i].Name == name {
			return &c.Libraries[i]
		}
	}
	return nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if c.Name != "" {
		if err := validators.ValidateRunName(c.Name); err != nil {
			return err
		}
	}

	if err := validateCatalog(&c.Catalog); err != nil {
		return err
	}

	if err := validateSyncPolicy(c.SyncPolicy); err != nil {
		return err
	}

	if len(c.Libraries) == 0 {
		return fmt.Errorf("at least one library must be configured")
	}

	sharedNames := make(map[string]bool)
	for i, shared := range c.SharedFilters {
		if shared.Name == "" {
			return fmt.Errorf("sharedFilters[%d]: name is required", i)
		}
		if sharedNames[shared.Name] {
			return fmt.Errorf("sharedFilters[%d]: duplicate shared filter name '%s'", i, shared.Name)
		}
		sharedNames[shared.Name] = true
	}

	var errs []error
	for i, shared := range c.SharedFilters {
		prefix := fmt.Sprintf("sharedFilters[%d] (%s)", i, shared.Name)
		errs = append(errs, validateFilters(shared.Filters, prefix))
		errs = append(errs, validateSharedRefs(shared.SharedFilters, sharedNames, prefix))
	}

	libraryNames := make(map[string]bool)
	for i, lib := range c.Libraries {
		if lib.Name == "" {
			return fmt.Errorf("libraries[%d]: name is required", i)
		}
		if libraryNames[lib.Name] {
			return fmt.Errorf("libraries[%d]: duplicate library name '%s'", i, lib.Name)
		}
		libraryNames[lib.Name] = true
		if err := validators.ValidateLibraryName(lib.Name); err != nil {
			return fmt.Errorf("libraries[%d]: %w", i, err)
		}

		prefix := fmt.Sprintf("libraries[%d] (%s)", i, lib.Name)
		errs = append(errs, validateFilters(lib.Filters, prefix))
		errs = append(errs, validateSharedRefs(lib.SharedFilters, sharedNames, prefix))
	}

	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	if err := validateAuth(c.Auth); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	return errors.Join(errs...)
}

// validateAuth checks the mode and that jwt mode has usable providers
func validateAuth(a *AuthConfig) error {
	if a == nil {
		return nil
	}

	switch a.GetMode() {
	case AuthModeAnonymous:
		return nil
	case AuthModeJWT:
	default:
		return fmt.Errorf("mode must be %s or %s, got %s", AuthModeAnonymous, AuthModeJWT, a.Mode)
	}

	if len(a.Providers) == 0 {
		return fmt.Errorf("at least one provider is required in %s mode", AuthModeJWT)
	}
	names := make(map[string]bool)
	for i, p := range a.Providers {
		if p.Name == "" {
			return fmt.Errorf("providers[%d]: name is required", i)
		}
		if names[p.Name] {
			return fmt.Errorf("providers[%d]: duplicate provider name '%s'", i, p.Name)
		}
		names[p.Name] = true
		if p.SecretFile == "" {
			return fmt.Errorf("providers[%d] (%s): secretFile is required", i, p.Name)
		}
	}
	return nil
}

// validateCatalog ensures exactly one catalog source is configured
func validateCatalog(cat *CatalogConfig) error {
	configCount := 0
	if cat.Git != nil {
		configCount++
	}
	if cat.API != nil {
		configCount++
	}
	if cat.File != nil {
		configCount++
	}

	if configCount == 0 {
		return fmt.Errorf("catalog: one of git, api, or file configuration must be specified")
	}
	if configCount > 1 {
		return fmt.Errorf("catalog: only one of git, api, or file configuration may be specified")
	}

	switch {
	case cat.Git != nil:
		if cat.Git.Repository == "" {
			return fmt.Errorf("catalog: git.repository is required")
		}
		refs := 0
		for _, ref := range []string{cat.Git.Branch, cat.Git.Tag, cat.Git.Commit} {
			if ref != "" {
				refs++
			}
		}
		if refs > 1 {
			return fmt.Errorf("catalog: only one of git.branch, git.tag, or git.commit may be specified")
		}
		if cat.Git.Auth != nil && (cat.Git.Auth.Username == "" || cat.Git.Auth.PasswordFile == "") {
			return fmt.Errorf("catalog: git.auth requires username and passwordFile")
		}
	case cat.API != nil:
		if cat.API.Endpoint == "" {
			return fmt.Errorf("catalog: api.endpoint is required")
		}
		if cat.API.Timeout != "" {
			if d, err := time.ParseDuration(cat.API.Timeout); err != nil || d <= 0 {
				return fmt.Errorf("catalog: api.timeout must be a positive duration, got %q", cat.API.Timeout)
			}
		}
	case cat.File != nil:
		if cat.File.Path == "" {
			return fmt.Errorf("catalog: file.path is required")
		}
	}

	return nil
}

// validateSyncPolicy validates the optional sync policy
func validateSyncPolicy(policy *SyncPolicyConfig) error {
	if policy == nil || policy.Interval == "" {
		return nil
	}

	d, err := time.ParseDuration(policy.Interval)
	if err != nil {
		return fmt.Errorf("syncPolicy.interval must be a valid duration (e.g., '30m', '1h'): %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("syncPolicy.interval must be positive, got %s", policy.Interval)
	}

	return nil
}

func validateFilters(filters []*FilterConfig, prefix string) error {
	var errs []error
	for i, f := range filters {
		if f == nil {
			// Null entries are allowed and always match
			continue
		}
		if err := validateFilter(f); err != nil {
			errs = append(errs, fmt.Errorf("%s: filters[%d]: %w", prefix, i, err))
		}
	}
	return errors.Join(errs...)
}

func validateFilter(f *FilterConfig) error {
	count := 0
	if f.Text != nil {
		count++
	}
	if f.Event != nil {
		count++
	}
	if f.SoundBankType != nil {
		count++
	}

	if count == 0 {
		return fmt.Errorf("one of text, event, or soundBankType must be specified")
	}
	if count > 1 {
		return fmt.Errorf("only one of text, event, or soundBankType may be specified")
	}

	switch {
	case f.Text != nil:
		switch f.Text.Target {
		case "", TextTargetName, TextTargetSystemPath, TextTargetPathInWwise:
		default:
			return fmt.Errorf("text.target must be one of %s, %s or %s, got %s",
				TextTargetName, TextTargetSystemPath, TextTargetPathInWwise, f.Text.Target)
		}
	case f.SoundBankType != nil:
		switch f.SoundBankType.Kind {
		case "", SoundBankKindUser, SoundBankKindAuto:
		default:
			return fmt.Errorf("soundBankType.kind must be %s or %s, got %s",
				SoundBankKindUser, SoundBankKindAuto, f.SoundBankType.Kind)
		}
	}

	return nil
}

func validateSharedRefs(refs []string, known map[string]bool, prefix string) error {
	var errs []error
	for _, ref := range refs {
		if !known[ref] {
			errs = append(errs, fmt.Errorf("%s: unknown shared filter '%s'", prefix, ref))
		}
	}
	return errors.Join(errs...)
}
