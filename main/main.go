package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aely0/ledbridge"
	"github.com/aely0/ledbridge/config"
)

var (
	gameFlag     string
	portFlag     int
	requireWheel bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:          "ledbridge",
	Short:        "Racing game telemetry to Logitech G27 LED bridge",
	SilenceUsage: true,
	RunE:         runBridge,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
	rootCmd.Flags().StringVarP(&gameFlag, "game", "g", "",
		"game to bridge telemetry from: dirt-rally-2 or forza-horizon-5 (overrides saved setting)")
	rootCmd.Flags().IntVarP(&portFlag, "port", "p", 0,
		"UDP port to listen on (overrides saved setting)")
	rootCmd.Flags().BoolVar(&requireWheel, "require-wheel", false,
		"exit immediately if the G27 is not present at startup")
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(simulateCmd)
}

func runBridge(cmd *cobra.Command, _ []string) error {
	cfg, err := effectiveConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := ledbridge.NewSupervisor(cfg, ledbridge.NewDevice())
	if err := sup.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// effectiveConfig layers command line flags over the persisted settings
// and writes the result back when a flag changed them.
func effectiveConfig() (ledbridge.Config, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return ledbridge.Config{}, err
	}
	settings, err := config.Load(path)
	if err != nil {
		log.WithField("err", err).Warn("ignoring unreadable settings file")
		settings = config.Settings{}
	}

	changed := false
	if gameFlag != "" {
		settings.Game = gameFlag
		changed = true
	}
	if portFlag != 0 {
		settings.Port = portFlag
		changed = true
	}
	if settings.Game == "" {
		settings.Game = "dirt-rally-2"
	}

	game, err := ledbridge.ParseGameProfile(settings.Game)
	if err != nil {
		return ledbridge.Config{}, err
	}
	port := settings.Port
	if port == 0 {
		port = game.DefaultPort()
	}

	if changed {
		if err := config.Save(path, settings); err != nil {
			log.WithField("err", err).Warn("unable to save settings")
		}
	}
	return ledbridge.Config{
		Game:          game,
		Port:          port,
		RequireDevice: requireWheel,
	}, nil
}

func main() {
	cobra.OnInitialize(func() {
		if verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}
	})
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
