package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasklet/internal/config"
)

func newConfigCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change configuration",
	}

	var global bool
	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write a key to the project file, or the global one with --global",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configTargetPath(global)
			if err != nil {
				return err
			}
			if err := config.SetKey(path, args[0], args[1]); err != nil {
				return err
			}
			return writePlain("set %s in %s\n", args[0], path)
		},
	}
	set.Flags().BoolVar(&global, "global", false, "write to the global config file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print the effective value of a key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				value, err := configValue(cfg, args[0])
				if err != nil {
					return err
				}
				return writePlain("%s\n", value)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Print every key with its effective value",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, key := range config.AllowedKeys() {
					value, err := cfg.Get(key)
					if err != nil {
						return err
					}
					if err := writePlain("%s = %s\n", key, value); err != nil {
						return err
					}
				}
				return nil
			},
		},
		set,
	)
	return cmd
}

func configValue(cfg *config.Config, key string) (string, error) {
	if !config.IsAllowedKey(key) {
		return "", fmt.Errorf("unknown key: %s (allowed: %v)", key, config.AllowedKeys())
	}
	return cfg.Get(key)
}

func configTargetPath(global bool) (string, error) {
	if global {
		return config.GlobalPath()
	}
	return config.ProjectPath()
}
