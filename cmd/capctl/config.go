package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

// Config holds where and how fast to talk to the board.
type Config struct {
	Port string
	Baud int
}

const (
	defaultPort = "/dev/ttyACM0"
	defaultBaud = 9600
)

const configFile = `
# Serial device of the capbutton board. The Pico enumerates as a USB CDC
# ACM device; on most Linux hosts that is /dev/ttyACM0.
Port = "/dev/ttyACM0"

# Line rate. The firmware always listens at 9600.
Baud = 9600
`

// loadConfig reads the TOML config and applies flag overrides. A missing
// file is fine: the compiled-in defaults match the firmware.
func loadConfig() Config {
	c := Config{Port: defaultPort, Baud: defaultBaud}
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, &c); err != nil {
			log.Fatalln("load config:", err)
		}
	}
	if portFlag != "" {
		c.Port = portFlag
	}
	if baudFlag != 0 {
		c.Baud = baudFlag
	}
	if c.Port == "" {
		log.Fatalln("no serial port configured")
	}
	if c.Baud <= 0 {
		log.Fatalln("bad baud rate:", c.Baud)
	}
	return c
}

func writeDefaultConfig(path string, reset bool) error {
	if _, err := os.Stat(path); err == nil && !reset {
		log.Infoln("config already exists at", path, "(use --reset to overwrite)")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.WriteString(dst, configFile); err != nil {
		return err
	}
	log.Infoln("wrote", path)
	return nil
}
