package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-genes/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-genes configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vibe-genes.yaml.",
		Example: `  vibe-genes config                              # show all config
  vibe-genes config set db.driver duckdb          # store genes in a local DuckDB file
  vibe-genes config set genes ENSG00000141510,ENSG00000139618
  vibe-genes config get db.host                   # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}
}

// redacted hides secrets when printing settings.
func redacted(settings map[string]any) map[string]any {
	if db, ok := settings["db"].(map[string]any); ok {
		if pw, ok := db["password"].(string); ok && pw != "" {
			db["password"] = "********"
		}
	}
	return settings
}

func runConfigShow() error {
	out, err := yaml.Marshal(redacted(viper.AllSettings()))
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Printf("# Config file: %s\n", used)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(key, value string) error {
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".vibe-genes.yaml")
	}

	// Only the file's own settings are written back, never defaults or
	// values picked up from the environment.
	file := viper.New()
	file.SetConfigFile(cfgFile)
	if err := file.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading config: %w", err)
	}

	switch {
	case key == config.KeyGenes:
		file.Set(key, strings.Split(value, ","))
	case value == "true", value == "yes", value == "on":
		file.Set(key, true)
	case value == "false", value == "no", value == "off":
		file.Set(key, false)
	default:
		file.Set(key, value)
	}

	if err := file.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	if key == config.KeyDBPassword {
		val = "********"
	}
	fmt.Println(val)
	return nil
}
