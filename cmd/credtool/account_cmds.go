package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hasbyte1/go-credentials/credential"
)

func newAccountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts in the configured store",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <username> <password>",
			Short: "Create an account encoded under the default strategy",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withService(cmd, func(svc *credential.Service, store credential.Store) error {
					acc := credential.NewAccount(args[0])
					res, err := svc.ChangePassword(cmd.Context(), acc, args[1], credential.ChangeOptions{Validate: true})
					if err != nil {
						return err
					}
					if res.Status == credential.StatusValidationFailed {
						fmt.Fprintf(a.out, "invalid: %s (limit %d)\n", res.Violation.Rule, res.Violation.Limit)
						return res.Violation
					}
					if err := store.Create(cmd.Context(), acc); err != nil {
						return err
					}
					fmt.Fprintf(a.out, "id: %s\nstrategy: %s\n", acc.ID(), acc.Strategy())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "login <username> <password>",
			Short: "Authenticate an account, upgrading its credential when possible",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withService(cmd, func(svc *credential.Service, store credential.Store) error {
					acc, err := store.FindByUsername(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					outcome, err := svc.Authenticate(cmd.Context(), acc, args[1])
					fmt.Fprintf(a.out, "outcome: %s\nstrategy: %s\nrequiresNewPassword: %t\n",
						outcome, acc.Strategy(), acc.RequiresNewPassword())
					if err != nil {
						return err
					}
					if outcome != credential.OutcomeValid {
						return errMismatch
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "passwd <username> <new-password>",
			Short: "Change an account's password",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withService(cmd, func(svc *credential.Service, store credential.Store) error {
					acc, err := store.FindByUsername(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					res, err := svc.ChangePassword(cmd.Context(), acc, args[1], credential.DefaultChangeOptions())
					if err != nil {
						return err
					}
					if res.Status == credential.StatusValidationFailed {
						fmt.Fprintf(a.out, "invalid: %s (limit %d)\n", res.Violation.Rule, res.Violation.Limit)
						return res.Violation
					}
					fmt.Fprintf(a.out, "strategy: %s\n", res.Strategy)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "reset-code <username>",
			Short: "Print the current password reset code of an account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withService(cmd, func(svc *credential.Service, store credential.Store) error {
					acc, err := store.FindByUsername(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					fmt.Fprintln(a.out, svc.ResetCode(acc))
					return nil
				})
			},
		},
	)
	return cmd
}

// withService opens the configured store, builds a Service on it and runs fn.
func (a *app) withService(cmd *cobra.Command, fn func(*credential.Service, credential.Store) error) (err error) {
	store, err := a.cfg.Store.Open(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close store")
		}
	}()
	svc, err := credential.NewService(a.registry, store, a.options...)
	if err != nil {
		return err
	}
	return fn(svc, store)
}
