package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eeprom-tools/eeprog/pkg/shell"
)

var readCmd = &cobra.Command{
	Use:   "read <addr>",
	Short: "Read one byte",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		addr, err := shell.ParseUint(args[0], uint64(eng.MaxAddr()))
		if err != nil {
			return err
		}
		fmt.Printf("0x%04X = 0x%02X\n", addr, eng.ReadByteAt(uint32(addr)))
		return nil
	},
}

var writeCmd = &cobra.Command{
	Use:   "write <addr> <byte>",
	Short: "Write one byte and wait for the write cycle",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		addr, err := shell.ParseUint(args[0], uint64(eng.MaxAddr()))
		if err != nil {
			return err
		}
		b, err := shell.ParseUint(args[1], 0xFF)
		if err != nil {
			return err
		}
		if !eng.WriteByteAt(byte(b), uint32(addr)) {
			return fmt.Errorf("write did not complete (polling timeout; device locked or faulty?)")
		}
		fmt.Printf("0x%04X <- 0x%02X\n", addr, b)
		return nil
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump <addr> <len>",
	Short: "Hex dump an address range",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		addr, err := shell.ParseUint(args[0], uint64(eng.MaxAddr()))
		if err != nil {
			return err
		}
		count, err := shell.ParseUint(args[1], uint64(eng.MaxAddr())-addr+1)
		if err != nil {
			return err
		}
		buf := make([]byte, count)
		for i := range buf {
			buf[i] = eng.ReadByteAt(uint32(addr) + uint32(i))
		}
		fmt.Print(hex.Dump(buf))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd, writeCmd, dumpCmd)
}
