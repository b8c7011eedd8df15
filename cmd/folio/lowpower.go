package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/folio-motion/prefs"
	"github.com/lixenwraith/folio-motion/scheduler"
)

// lowPowerCmd reads or persists the low-power flag the scheduler loads at startup
var lowPowerCmd = &cobra.Command{
	Use:       "lowpower [on|off]",
	Short:     "Show or set low-power mode",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := prefs.OpenSQLStore(cfg.StorePath)
		if err != nil {
			return err
		}
		defer store.Close()

		if len(args) == 0 {
			on, err := readLowPower(store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "low-power mode: %s\n", onOff(on))
			return nil
		}

		var on bool
		switch args[0] {
		case "on":
			on = true
		case "off":
		default:
			return fmt.Errorf("expected on or off, got %q", args[0])
		}
		if err := store.Set(scheduler.LowPowerKey, strconv.FormatBool(on)); err != nil {
			return err
		}
		logger.Debug("low-power mode persisted")
		fmt.Fprintf(cmd.OutOrStdout(), "low-power mode: %s\n", onOff(on))
		return nil
	},
}

func readLowPower(store prefs.Store) (bool, error) {
	v, ok, err := store.Get(scheduler.LowPowerKey)
	if err != nil || !ok {
		return false, err
	}
	on, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid stored value %q: %w", v, err)
	}
	return on, nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
