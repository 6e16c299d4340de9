package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the veloxrender version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("veloxrender", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
