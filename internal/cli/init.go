package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/tasktree/internal/paths"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend    string `yaml:"backend"`
	DataDir    string `yaml:"data_dir,omitempty"`
	Owner      string `yaml:"owner,omitempty"`
	ListenAddr string `yaml:"listen_addr,omitempty"`
	LogLevel   string `yaml:"log_level,omitempty"`
}

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize tasktree storage",
		Long:  "Create the configuration and data directories, write config.yaml if missing, then create the database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			if err := os.MkdirAll(s.ConfigDir, 0o755); err != nil {
				return sysError(fmt.Errorf("create config directory: %w", err))
			}
			path := paths.ConfigFile(s.ConfigDir)
			created, err := writeConfigIfMissing(path, configFile{
				Backend:    s.Backend,
				DataDir:    s.DataDir,
				Owner:      s.Owner,
				ListenAddr: s.ListenAddr,
				LogLevel:   s.LogLevel,
			})
			if err != nil {
				return sysError(fmt.Errorf("write config: %w", err))
			}
			if created {
				a.log.Info("config written", "path", path)
			}

			store, err := a.attach()
			if err != nil {
				return err
			}
			if err := store.Detach(); err != nil {
				return sysError(fmt.Errorf("finalize storage: %w", err))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "tasktree initialized in %s\n", s.DataDir)
			return nil
		},
	}
}

// writeConfigIfMissing creates config.yaml from cfg when the file does not
// exist. An existing file is left untouched.
func writeConfigIfMissing(path string, cfg configFile) (bool, error) {
	if fileExists(path) {
		return false, nil
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
