// capctl talks to the capbutton panel board over its serial console.
// It is the host-side counterpart of the firmware's one-byte command
// protocol: pick a player and an action, capctl writes the matching
// command characters to the port.
package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	portFlag   string
	baudFlag   int
	initReset  bool

	mainCmd = &cobra.Command{
		Use:   "capctl",
		Short: "Drive the capbutton panel lamps over serial",
	}
	lampCmd = &cobra.Command{
		Use:   "lamp <player> <action>",
		Short: "Set a player lamp (player: p1, p2, both; action: on, off, blink-slow, blink-med, blink-fast)",
		Args:  cobra.ExactArgs(2),
		Run:   runLamp,
	}
	rawCmd = &cobra.Command{
		Use:   "raw <chars>",
		Short: "Send literal command characters to the board",
		Args:  cobra.ExactArgs(1),
		Run:   runRaw,
	}
	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Print whatever the board writes to its console",
		Run:   runWatch,
	}
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Run:   runInit,
	}
)

func runLamp(cmd *cobra.Command, args []string) {
	payload, err := commandBytes(args[0], args[1])
	if err != nil {
		log.Fatalln("lamp:", err)
	}
	c := loadConfig()
	if err := send(c, payload); err != nil {
		log.Fatalln("send:", err)
	}
	log.Infof("sent %q to %s", payload, c.Port)
}

func runRaw(cmd *cobra.Command, args []string) {
	if args[0] == "" {
		log.Fatalln("raw: nothing to send")
	}
	c := loadConfig()
	if err := send(c, []byte(args[0])); err != nil {
		log.Fatalln("send:", err)
	}
	log.Infof("sent %q to %s", args[0], c.Port)
}

func runInit(cmd *cobra.Command, args []string) {
	if err := writeDefaultConfig(configPath, initReset); err != nil {
		log.Fatalln("init:", err)
	}
}

func main() {
	mainCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "/etc/capctl.toml", "Config path. The path to the configuration file")
	mainCmd.PersistentFlags().StringVarP(&portFlag, "port", "p", "", "Serial device of the board. Overrides the config file")
	mainCmd.PersistentFlags().IntVarP(&baudFlag, "baud", "b", 0, "Line rate. Overrides the config file")
	initCmd.Flags().BoolVar(&initReset, "reset", false, "Overwrite the config file even if it already exists")
	mainCmd.AddCommand(lampCmd, rawCmd, watchCmd, initCmd)
	mainCmd.Execute()
}
