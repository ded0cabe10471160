package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aely0/ledbridge"
)

var continuous bool

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Exercise the LED bar without a game running",
	RunE:  runTest,
}

func init() {
	testCmd.Flags().BoolVarP(&continuous, "continuous", "c", false,
		"repeat the pattern until interrupted")
}

func runTest(cmd *cobra.Command, _ []string) error {
	dev := ledbridge.NewDevice()
	if err := dev.Open(); err != nil {
		return err
	}
	defer dev.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("running LED test pattern")
	for {
		if err := dev.TestCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return dev.Write(ledbridge.AllOff)
			}
			return err
		}
		if !continuous {
			return nil
		}
	}
}
