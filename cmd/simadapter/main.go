// simadapter serves a simulated EEPROM over a unix socket, speaking the
// same wire protocol a real bus adapter board does. It lets the eeprog
// --socket path be exercised end to end with no hardware.
package main

import (
	"flag"
	"log"
	"net"
	"os"

	"github.com/eeprom-tools/eeprog/pkg/bus"
	"github.com/eeprom-tools/eeprog/pkg/pagemap"
	"github.com/eeprom-tools/eeprog/pkg/simeeprom"
)

var (
	socketPath = flag.String("socket", "/tmp/eeprog-sim.sock", "Unix socket path to listen on.")
	size       = flag.Uint("size", 32768, "Simulated device capacity in bytes.")
	page       = flag.Uint("page", 64, "Simulated device page size in bytes.")
)

func main() {
	flag.Parse()

	if err := pagemap.ValidateGeometry(uint32(*size), int(*page)); err != nil {
		log.Fatalf("Bad -size/-page: %v", err)
	}
	if *size > bus.WireMaxAddr+1 {
		log.Fatalf("-size %d exceeds the %d-byte wire protocol limit", *size, bus.WireMaxAddr+1)
	}

	// Remove the socket file if it already exists.
	if err := os.Remove(*socketPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error removing existing socket: %v", err)
	}

	listener, err := net.Listen("unix", *socketPath)
	if err != nil {
		log.Fatalf("Error creating socket listener: %v", err)
	}

	chip := simeeprom.New(uint32(*size), uint32(*page))
	log.Printf("Serving simulated %d-byte device (%d-byte pages) on %q", *size, *page, *socketPath)

	// One session at a time: the bus is a single shared resource, so two
	// interleaved programmers would corrupt each other's transactions.
	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Fatalf("Cannot accept programmer connection: %v", err)
		}
		log.Println("Programmer connected")
		if err := bus.ServeAdapter(conn, chip); err != nil {
			log.Printf("Adapter session ended with error: %v", err)
		} else {
			log.Println("Programmer disconnected")
		}
		conn.Close()
	}
}
