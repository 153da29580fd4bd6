package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/goaltrack/internal/cli"
	"github.com/terraincognita07/goaltrack/internal/services"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "goaltrack",
		Short:         "Goal tracker with email reminders and rewards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newNotifyCommand(), newResetPasswordCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the notification scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			runtime, err := loadRuntime(true)
			if err != nil {
				return err
			}
			defer runtime.Close()
			return runtime.Serve(cmd.Context())
		},
	}
}

func newNotifyCommand() *cobra.Command {
	var force bool
	command := &cobra.Command{
		Use:   "notify",
		Short: "Run one notification tick and print its report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			runtime, err := loadRuntime(true)
			if err != nil {
				return err
			}
			defer runtime.Close()

			report, err := runtime.notifier.Tick(cmd.Context(), services.TickOptions{Force: force})
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(report)
		},
	}
	command.Flags().BoolVar(&force, "force", false, "ignore the reminder hour")
	return command
}

func newResetPasswordCommand() *cobra.Command {
	var prompt bool
	command := &cobra.Command{
		Use:   "reset-password <username>",
		Short: "Set a new password for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := loadRuntime(false)
			if err != nil {
				return err
			}
			defer runtime.Close()

			options := cli.ResetPasswordOptions{Username: args[0], Output: cmd.OutOrStdout()}
			if prompt {
				options.Password, err = cli.PromptNewPassword(os.Stdin, cmd.OutOrStdout())
				if err != nil {
					return err
				}
			}
			return cli.RunResetPasswordCommand(runtime.database, options)
		},
	}
	command.Flags().BoolVar(&prompt, "prompt", false, "read the new password from the terminal instead of generating one")
	return command
}
