package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aely0/ledbridge"
)

var simPort int

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Send synthetic Forza Horizon 5 telemetry to a local bridge",
	Long: `Emits Forza Horizon 5 Sled packets with a ramping RPM to localhost so the
bridge can be exercised end to end without a game installed. Run the bridge
with --game forza-horizon-5 in another terminal.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVarP(&simPort, "port", "p", 0,
		"UDP port to send to (default: the Forza telemetry port)")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	port := simPort
	if port == 0 {
		port = ledbridge.ForzaHorizon5.DefaultPort()
	}
	conn, err := net.Dial("udp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return errors.Wrapf(err, "unable to dial telemetry port %d", port)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	const (
		maxRPM  = 7500
		idleRPM = 900
	)
	rpm := float32(idleRPM)
	down := false

	log.WithField("port", port).Info("sending synthetic telemetry")
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if _, err := conn.Write(ledbridge.SledPacket(rpm, maxRPM, idleRPM, true)); err != nil {
			return errors.Wrap(err, "unable to send telemetry")
		}
		if down {
			rpm -= 75
		} else {
			rpm += 75
		}
		if rpm >= maxRPM {
			down = true
		} else if rpm <= idleRPM {
			down = false
		}
	}
}
