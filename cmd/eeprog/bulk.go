package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eeprom-tools/eeprog/pkg/shell"
)

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Zero-fill the whole device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		if !eng.EraseAll() {
			return fmt.Errorf("erase did not complete")
		}
		fmt.Println("device erased")
		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <file> [addr]",
	Short: "Stream a file into the device",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		var addr uint64
		if len(args) == 2 {
			if addr, err = shell.ParseUint(args[1], uint64(eng.MaxAddr())); err != nil {
				return err
			}
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("cannot open input file: %v", err)
		}
		defer f.Close()
		st, err := f.Stat()
		if err != nil {
			return fmt.Errorf("cannot stat input file: %v", err)
		}

		written, err := eng.LoadStream(bufio.NewReader(f), st.Size(), uint32(addr))
		if err != nil {
			return err
		}
		fmt.Printf("loaded %d bytes @ 0x%04X from %q\n", written, addr, args[0])
		return nil
	},
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Enable software data protection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		eng.Lock()
		fmt.Println("software data protection enabled")
		return nil
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Disable software data protection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		eng.Unlock()
		fmt.Println("software data protection disabled")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eraseCmd, loadCmd, lockCmd, unlockCmd)
}
