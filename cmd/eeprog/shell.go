package main

import (
	"fmt"
	"os"

	"github.com/matishsiao/goInfo"
	"github.com/spf13/cobra"

	"github.com/eeprom-tools/eeprog/pkg/shell"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive command shell",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		if gi, err := goInfo.GetInfo(); err == nil {
			fmt.Printf("eeprog on %s %s\n", gi.GoOS, gi.Core)
		}
		fmt.Printf("device: %d bytes, %d-byte pages. Type \"help\" for commands.\n", flagSize, flagPage)
		return shell.New(eng, os.Stdout).Run(os.Stdin)
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
