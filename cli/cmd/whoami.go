/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Prints the configured identity.",
	Long: `Prints the locally configured identity used for publishing messages
and rendering own messages in the timeline.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		user := sess.User()
		fmt.Printf("UserID:    %d\n", user.ID)
		fmt.Printf("Name:      %s\n", user.Name)
		if user.Apartment != "" {
			fmt.Printf("Apartment: %s %s동 %s호\n", user.Apartment, user.Building, user.Unit)
		}
		role := "resident"
		if viper.GetBool(adminKey) {
			role = "admin"
		}
		fmt.Printf("Role:      %s\n", role)
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
