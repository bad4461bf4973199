// Package config builds the runtime configuration from viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/inodb/vibe-genes/internal/ensembl"
	"github.com/inodb/vibe-genes/internal/genelist"
	"github.com/inodb/vibe-genes/internal/store"
	"github.com/inodb/vibe-genes/internal/viewer"
)

// EnvPrefix prefixes environment overrides, e.g. VIBE_GENES_DB_HOST.
const EnvPrefix = "VIBE_GENES"

// Config keys.
const (
	KeyDBDriver        = "db.driver"
	KeyDBHost          = "db.host"
	KeyDBPort          = "db.port"
	KeyDBName          = "db.name"
	KeyDBUser          = "db.user"
	KeyDBPassword      = "db.password"
	KeyDBSSLMode       = "db.sslmode"
	KeyDBPath          = "db.path"
	KeyEnsemblURL      = "ensembl.url"
	KeyEnsemblAssembly = "ensembl.assembly"
	KeyEnsemblTimeout  = "ensembl.timeout"
	KeyGenes           = "genes"
	KeyGenesFile       = "genes_file"
	KeyServerAddr      = "server.addr"
	KeyServerDebug     = "server.debug"
)

// Config is passed explicitly to every component.
type Config struct {
	DB      store.Config
	Ensembl Ensembl
	Genes   []string
	Server  Server
}

// Ensembl configures the REST client.
type Ensembl struct {
	BaseURL string
	Timeout time.Duration
}

// Server configures the viewer.
type Server struct {
	Addr  string
	Debug bool
}

// DefaultDuckDBPath returns ~/.vibe-genes/genes.duckdb.
func DefaultDuckDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "genes.duckdb"
	}
	return filepath.Join(home, ".vibe-genes", "genes.duckdb")
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDBDriver, store.DriverPostgres)
	v.SetDefault(KeyDBHost, "localhost")
	v.SetDefault(KeyDBPort, 5432)
	v.SetDefault(KeyDBName, "gene_expression")
	v.SetDefault(KeyDBSSLMode, "disable")
	v.SetDefault(KeyDBPath, DefaultDuckDBPath())
	v.SetDefault(KeyEnsemblAssembly, "GRCh38")
	v.SetDefault(KeyEnsemblTimeout, ensembl.DefaultTimeout)
	v.SetDefault(KeyGenes, genelist.Default)
	v.SetDefault(KeyServerAddr, viewer.DefaultAddr)
	v.SetDefault(KeyServerDebug, true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials keep their conventional names.
	v.BindEnv(KeyDBUser, EnvPrefix+"_DB_USER", "DB_USER")             //nolint:errcheck
	v.BindEnv(KeyDBPassword, EnvPrefix+"_DB_PASSWORD", "DB_PASSWORD") //nolint:errcheck
}

// Load builds a Config from v. The genes file, when set, replaces the
// configured gene list.
func Load(v *viper.Viper) (*Config, error) {
	driver, err := store.NormalizeDriver(v.GetString(KeyDBDriver))
	if err != nil {
		return nil, err
	}

	baseURL := v.GetString(KeyEnsemblURL)
	if baseURL == "" {
		baseURL = ensembl.BaseURLForAssembly(v.GetString(KeyEnsemblAssembly))
	}

	genes := v.GetStringSlice(KeyGenes)
	if path := v.GetString(KeyGenesFile); path != "" {
		genes, err = genelist.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	genes = genelist.Merge(genes)

	cfg := &Config{
		DB: store.Config{
			Driver:   driver,
			Host:     v.GetString(KeyDBHost),
			Port:     v.GetInt(KeyDBPort),
			Database: v.GetString(KeyDBName),
			User:     v.GetString(KeyDBUser),
			Password: v.GetString(KeyDBPassword),
			SSLMode:  v.GetString(KeyDBSSLMode),
			Path:     v.GetString(KeyDBPath),
		},
		Ensembl: Ensembl{
			BaseURL: baseURL,
			Timeout: v.GetDuration(KeyEnsemblTimeout),
		},
		Genes: genes,
		Server: Server{
			Addr:  v.GetString(KeyServerAddr),
			Debug: v.GetBool(KeyServerDebug),
		},
	}

	if cfg.DB.Driver == store.DriverPostgres && cfg.DB.Database == "" {
		return nil, fmt.Errorf("%s must be set", KeyDBName)
	}
	return cfg, nil
}
