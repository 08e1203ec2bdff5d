package main

import (
	"fmt"
	"os"

	"github.com/pkg/term"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Command characters understood by the firmware, one byte per player and
// action. "both" sends the per-player bytes back to back, P1 first, so a
// two-lamp change lands within one polling pass.
var (
	p1Actions = map[string]byte{
		"on": 'A', "off": 'a',
		"blink-slow": '1', "blink-med": '2', "blink-fast": '3',
	}
	p2Actions = map[string]byte{
		"on": 'B', "off": 'b',
		"blink-slow": '4', "blink-med": '5', "blink-fast": '6',
	}
)

func commandBytes(player, action string) ([]byte, error) {
	b1, ok := p1Actions[action]
	if !ok {
		return nil, fmt.Errorf("unknown action %q (want on, off, blink-slow, blink-med or blink-fast)", action)
	}
	b2 := p2Actions[action]
	switch player {
	case "p1":
		return []byte{b1}, nil
	case "p2":
		return []byte{b2}, nil
	case "both":
		return []byte{b1, b2}, nil
	}
	return nil, fmt.Errorf("unknown player %q (want p1, p2 or both)", player)
}

// send opens the port raw, writes the payload, and restores the line
// attributes before closing.
func send(c Config, payload []byte) error {
	t, err := term.Open(c.Port, term.Speed(c.Baud), term.RawMode)
	if err != nil {
		return err
	}
	defer t.Close()
	if _, err := t.Write(payload); err != nil {
		return err
	}
	return t.Restore()
}

func runWatch(cmd *cobra.Command, args []string) {
	c := loadConfig()
	t, err := term.Open(c.Port, term.Speed(c.Baud), term.RawMode)
	if err != nil {
		log.Fatalln("watch:", err)
	}
	defer t.Close()

	log.Infoln("watching", c.Port, "(ctrl-c to stop)")
	buf := make([]byte, 256)
	for {
		n, err := t.Read(buf)
		if n > 0 {
			os.Stdout.Write(buf[:n])
		}
		if err != nil {
			log.Fatalln("watch:", err)
		}
	}
}
