package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/fragsync-dev/fragsync/internal/errors"
	"github.com/fragsync-dev/fragsync/pkg/snapshot"
)

func snapshotCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect or reset the persisted state snapshot",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to fragsync.json")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the persisted snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotShow(configPath)
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete the persisted snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotReset(configPath)
		},
	}

	cmd.AddCommand(show, reset)
	return cmd
}

func runSnapshotShow(configPath string) error {
	backend, err := openConfiguredBackend(configPath)
	if err != nil {
		return err
	}
	defer backend.Close()

	data, err := backend.Load(context.Background())
	if err != nil {
		return errors.New("E203").Wrap(err)
	}
	if data == nil {
		info("No snapshot persisted")
		return nil
	}

	st, err := snapshot.Decode(data)
	if err != nil {
		return errors.New("E201").Wrap(err)
	}
	var env snapshot.Envelope
	_ = json.Unmarshal(data, &env)

	info("Snapshot version %d, saved %s", env.Version, env.SavedAt.Format("2006-01-02 15:04:05"))
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}

func runSnapshotReset(configPath string) error {
	backend, err := openConfiguredBackend(configPath)
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := backend.Delete(context.Background()); err != nil {
		return errors.New("E203").Wrap(err)
	}
	success("Snapshot deleted")
	return nil
}

func openConfiguredBackend(configPath string) (snapshot.Store, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return openBackend(cfg)
}
