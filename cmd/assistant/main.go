// Command assistant runs the message-to-event assistant: an HTTP server that
// ingests raw messages and turns natural-language time references into
// calendar events, plus a one-shot parse mode for quick inspection.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nasunstar/Agent-App-sub000/internal/profile"
	"github.com/nasunstar/Agent-App-sub000/server"
	"github.com/nasunstar/Agent-App-sub000/server/timeparse"
	"github.com/nasunstar/Agent-App-sub000/server/timezone"
	"github.com/nasunstar/Agent-App-sub000/store"
	"github.com/nasunstar/Agent-App-sub000/store/db"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Natural-language time resolution assistant",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runServer()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runServer()
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse [text]",
	Short: "Extract and resolve time expressions from text, printing JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runParse(args[0])
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(version)
	},
}

func init() {
	viper.SetEnvPrefix("assistant")
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().String("mode", "dev", `Server mode: "dev" or "prod"`)
	rootCmd.PersistentFlags().String("addr", "", "Binding address")
	rootCmd.PersistentFlags().Int("port", 8081, "Binding port")
	rootCmd.PersistentFlags().String("data", ".", "Data directory")
	rootCmd.PersistentFlags().String("dsn", "", "Database source name")
	rootCmd.PersistentFlags().String("driver", "sqlite", "Database driver")
	rootCmd.PersistentFlags().String("timezone", timezone.TimezoneAsiaSeoul, "Default IANA timezone")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}

	parseCmd.Flags().String("reference", "", "Reference time, RFC3339 (default: now)")
	if err := viper.BindPFlags(parseCmd.Flags()); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadProfile() (*profile.Profile, error) {
	prof := &profile.Profile{
		Mode:     viper.GetString("mode"),
		Addr:     viper.GetString("addr"),
		Port:     viper.GetInt("port"),
		Data:     viper.GetString("data"),
		DSN:      viper.GetString("dsn"),
		Driver:   viper.GetString("driver"),
		Version:  version,
		Timezone: viper.GetString("timezone"),
	}
	prof.FromEnv()
	if err := prof.Validate(); err != nil {
		return nil, err
	}
	return prof, nil
}

func runServer() error {
	prof, err := loadProfile()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbDriver, err := db.NewDBDriver(prof)
	if err != nil {
		return err
	}
	st := store.New(dbDriver, prof)

	srv, err := server.NewServer(ctx, prof, st)
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")
	srv.Shutdown(ctx)
	return nil
}

func runParse(text string) error {
	prof, err := loadProfile()
	if err != nil {
		return err
	}
	loc := timezone.MustParseTimezone(prof.Timezone)

	ref := time.Now()
	if raw := viper.GetString("reference"); raw != "" {
		ref, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("invalid reference time %q: %w", raw, err)
		}
	}

	exprs := timeparse.Extract(text)
	windows := timeparse.Resolve(text, exprs, timeparse.NewContext(ref.UnixMilli(), loc))

	displays := make([]string, 0, len(windows))
	for _, w := range windows {
		endMs := w.EndMillis()
		displays = append(displays, timezone.FormatEventTime(w.StartMillis(), &endMs, w.AllDay, loc))
	}

	out := map[string]any{
		"expressions": exprs,
		"windows":     windows,
		"display":     displays,
	}
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
