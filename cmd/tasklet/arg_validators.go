package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

func requireAtLeastArgs(min int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < min {
			return errors.New(message)
		}
		return nil
	}
}

func requireExactlyArgs(count int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != count {
			return errors.New(message)
		}
		return nil
	}
}

func requireID(cmd *cobra.Command, args []string) error {
	if err := requireExactlyArgs(1, "exactly one id is required")(cmd, args); err != nil {
		return err
	}
	if strings.TrimSpace(args[0]) == "" {
		return errors.New("id must not be empty")
	}
	return nil
}
