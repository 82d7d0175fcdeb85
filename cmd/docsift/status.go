package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/nkoval/docsift/internal/state"
)

func newStatusCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last build status recorded by a --share-state session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			project := state.FindProjectRoot(wd)
			store := state.NewStore(project, flags.stateDir)

			if !watch {
				return printStatus(store)
			}
			return watchStatus(cmd, store)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep printing as the state file changes")
	cmd.Flags().StringVar(&flags.stateDir, "state-dir", "", "directory for the shared state file")
	return cmd
}

func printStatus(store *state.Store) error {
	f, err := store.Read()
	if os.IsNotExist(err) {
		fmt.Println("no build status recorded (run docsift with --share-state)")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s", f.Status, f.Project)
	if s := f.Summary; s.Total() > 0 {
		fmt.Printf("  %d error(s), %d warning(s)", s.Errors, s.Warnings)
	}
	fmt.Printf("  (%s ago)\n", f.Age().Round(time.Second))
	if f.Info.ServerAddress != "" {
		fmt.Printf("serving %s\n", f.Info.ServerAddress)
	}
	return nil
}

// watchStatus re-prints on every change to the state file. The watch is
// on the directory: atomic rename-over replaces the inode, so watching
// the file itself would fire once and go quiet.
func watchStatus(cmd *cobra.Command, store *state.Store) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(store.Path())); err != nil {
		return err
	}

	if err := printStatus(store); err != nil {
		return err
	}

	target := filepath.Base(store.Path())
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if err := printStatus(store); err != nil {
				return err
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
