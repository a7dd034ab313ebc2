// Command console is the host-side companion for the firmware's serial
// link. It forwards stdin lines to the device and prints every NDJSON
// document the device sends back, which makes it usable both interactively
// and from scripts.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.bug.st/serial"
)

func main() {
	port := flag.String("port", "/dev/ttyACM0", "serial port device")
	baud := flag.Int("baud", 115200, "baud rate")
	machineMode := flag.Bool("machine", false, "switch the device to machine mode on connect")
	flag.Parse()

	mode := &serial.Mode{
		BaudRate: *baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(*port, mode)
	if err != nil {
		log.Fatalf("open %s: %v", *port, err)
	}
	defer p.Close()

	if *machineMode {
		if _, err := p.Write([]byte("{\"cmd\":\"mode\",\"mode\":\"machine\"}\n")); err != nil {
			log.Fatalf("write: %v", err)
		}
	}

	// Device -> stdout.
	go func() {
		r := bufio.NewScanner(p)
		for r.Scan() {
			fmt.Println(r.Text())
		}
		if err := r.Err(); err != nil && err != io.EOF {
			log.Printf("read: %v", err)
		}
		os.Exit(0)
	}()

	// Stdin -> device.
	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		if _, err := p.Write(append(in.Bytes(), '\n')); err != nil {
			log.Fatalf("write: %v", err)
		}
	}
}
