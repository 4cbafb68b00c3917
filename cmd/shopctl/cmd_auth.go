package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Log in and store the auth token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := client.Login(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (%s)\n", res.Name, res.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <name> <email> <password>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := client.Register(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("Welcome, %s. You are now logged in.\n", res.Name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored auth token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client.Logout()
		fmt.Println("Logged out")
		return nil
	},
}
