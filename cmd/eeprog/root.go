package main

import (
	"github.com/spf13/cobra"
)

var (
	flagSerial  string
	flagBaud    int
	flagSocket  string
	flagSim     bool
	flagSize    uint32
	flagPage    int
	flagRetries int

	flagGPIOAddr string
	flagGPIOData string
	flagGPIOCE   string
	flagGPIOWE   string
	flagGPIOOE   string
)

var rootCmd = &cobra.Command{
	Use:   "eeprog",
	Short: "Programmer for AT28C-family parallel EEPROMs",
	Long: `eeprog reads, writes, verifies, bulk-erases and software-locks
AT28C-family parallel EEPROMs. The device bus is driven through an adapter
board on a serial port or socket, through host GPIOs, or against an
in-process simulated chip for dry runs.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagSerial, "serial", "", "serial port of the bus adapter (like /dev/ttyUSB0, or COM2)")
	pf.IntVar(&flagBaud, "baud", 115200, "serial port speed")
	pf.StringVar(&flagSocket, "socket", "", "unix socket of a bus adapter (e.g. a simadapter instance)")
	pf.BoolVar(&flagSim, "sim", false, "drive an in-process simulated chip instead of hardware")
	pf.Uint32Var(&flagSize, "size", 32768, "device capacity in bytes")
	pf.IntVar(&flagPage, "page", 64, "device page size in bytes")
	pf.IntVar(&flagRetries, "max-page-retries", 0, "cap attempts per page write; 0 retries forever")

	pf.StringVar(&flagGPIOAddr, "gpio-addr", "", "comma-separated address pin names, LSB first (periph.io names)")
	pf.StringVar(&flagGPIOData, "gpio-data", "", "comma-separated data pin names, LSB first")
	pf.StringVar(&flagGPIOCE, "gpio-ce", "", "chip-enable pin name")
	pf.StringVar(&flagGPIOWE, "gpio-we", "", "write-enable pin name")
	pf.StringVar(&flagGPIOOE, "gpio-oe", "", "output-enable pin name")
}
