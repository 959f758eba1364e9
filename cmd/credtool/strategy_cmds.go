package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hasbyte1/go-credentials/hashing"
)

func newStrategiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the configured strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def := a.registry.DefaultName()
			for _, id := range a.registry.Names() {
				s, _ := a.registry.Get(id)
				marker := ""
				if id == def {
					marker = " (default)"
				}
				p := s.Policy()
				fmt.Fprintf(a.out, "%s\t%s\tminLength=%d minDigits=%d%s\n", id, s.Kind(), p.MinLength, p.MinDigits, marker)
			}
			return nil
		},
	}
}

func newEncodeCmd(a *app) *cobra.Command {
	var id, username string
	cmd := &cobra.Command{
		Use:   "encode <password>",
		Short: "Encode a password and print strategy, salt and encoded value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, s, err := a.strategy(id)
			if err != nil {
				return err
			}
			s.SetUsername(username)
			salt, err := s.Salt(true)
			if err != nil {
				return err
			}
			encoded, err := s.Encode(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "strategy: %s\nsalt: %s\nencoded: %s\n", name, salt, encoded)
			return nil
		},
	}
	cmd.Flags().StringVarP(&id, "strategy", "s", "", "strategy id (default strategy when empty)")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username of the credential")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	var id, salt, username string
	cmd := &cobra.Command{
		Use:   "verify <password> <encoded>",
		Short: "Check a password against an encoded value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := a.strategy(id)
			if err != nil {
				return err
			}
			s.SetSalt(salt)
			s.SetUsername(username)
			ok, err := s.Compare(args[0], args[1])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(a.out, "mismatch")
				return errMismatch
			}
			fmt.Fprintln(a.out, "match")
			return nil
		},
	}
	cmd.Flags().StringVarP(&id, "strategy", "s", "", "strategy id (default strategy when empty)")
	cmd.Flags().StringVar(&salt, "salt", "", "stored salt")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username of the credential")
	return cmd
}

var errMismatch = errors.New("password does not match")

func newValidateCmd(a *app) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "validate <password>",
		Short: "Check a password against a strategy's complexity policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := a.strategy(id)
			if err != nil {
				return err
			}
			err = s.Validate(args[0])
			var verr *hashing.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintf(a.out, "invalid: %s (limit %d)\n", verr.Rule, verr.Limit)
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "ok")
			return nil
		},
	}
	cmd.Flags().StringVarP(&id, "strategy", "s", "", "strategy id (default strategy when empty)")
	return cmd
}

func newCanUpgradeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "can-upgrade <from> <to>",
		Short: "Report whether credentials can be re-encoded from one strategy to another without a new password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, from, err := a.strategy(args[0])
			if err != nil {
				return err
			}
			_, to, err := a.strategy(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, from.CanUpgradeTo(to))
			return nil
		},
	}
}
