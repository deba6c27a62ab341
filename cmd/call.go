package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/elevsim/core/model"
	"github.com/kilianp07/elevsim/infra/mqtt"
)

var callOpts struct {
	floor     int
	direction string
	elevator  int
}

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Publish a hall call or a car button press over MQTT",
	RunE:  publishCall,
}

func init() {
	f := callCmd.Flags()
	f.IntVarP(&callOpts.floor, "floor", "f", 0, "floor of the call or destination")
	f.StringVarP(&callOpts.direction, "direction", "d", "UP", "hall call direction: UP or DOWN")
	f.IntVarP(&callOpts.elevator, "elevator", "e", -1, "send a destination for this elevator instead of a hall call")
	rootCmd.AddCommand(callCmd)
}

func publishCall(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.MQTT.Enabled() {
		return fmt.Errorf("mqtt.broker is not configured")
	}
	pub, err := mqtt.NewCallPublisher(cfg.MQTT)
	if err != nil {
		return err
	}
	defer pub.Disconnect()

	if callOpts.elevator >= 0 {
		if err := pub.PublishDestination(callOpts.elevator, callOpts.floor); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "destination %d sent to elevator %d\n", callOpts.floor, callOpts.elevator)
		return nil
	}
	dir := model.Direction(strings.ToUpper(callOpts.direction))
	if err := pub.PublishCall(callOpts.floor, dir); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "call %s at floor %d sent\n", dir, callOpts.floor)
	return nil
}
