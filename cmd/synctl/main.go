// synctl operates the workout sync engine from the command line: local
// optimistic writes, outbox inspection, and forced sync cycles against the
// remote service.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"example.com/workoutsync/internal/auth"
	"example.com/workoutsync/internal/config"
	"example.com/workoutsync/internal/domain"
	"example.com/workoutsync/internal/engine"
	"example.com/workoutsync/internal/persistence"
	"example.com/workoutsync/internal/persistence/memorystore"
	"example.com/workoutsync/internal/persistence/sqlitestore"
	"example.com/workoutsync/internal/remote"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	cfg     config.Config
	backend persistence.Backend
	eng     *engine.Engine
}

func (a *app) close() {
	a.eng.Wait()
	if err := a.backend.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "close store:", err)
	}
}

func newApp(configPath string, offline bool) (*app, error) {
	var cfg config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Load()
	}

	minter, err := auth.NewMinter(auth.Config{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		UserID: cfg.UserID,
	})
	if err != nil {
		return nil, err
	}
	client := remote.New(cfg.APIBaseURL, minter, cfg.HTTPTimeout)

	backend := persistence.Open(cfg.DatabasePath,
		func(path string) (persistence.Backend, error) {
			store, err := sqlitestore.Open(path)
			if err != nil {
				return nil, err
			}
			return store, nil
		},
		func() persistence.Backend { return memorystore.New() })

	eng := engine.New(backend, backend, backend, client, cfg.UserID,
		engine.WithBatchSize(cfg.FlushBatchSize),
		engine.WithMaxRounds(cfg.FlushMaxRounds))
	if offline {
		eng.SetOnline(false)
	}
	return &app{cfg: cfg, backend: backend, eng: eng}, nil
}

func newRootCommand() *cobra.Command {
	var configPath string
	var offline bool

	cmd := &cobra.Command{
		Use:           "synctl",
		Short:         "Offline-first workout store and sync engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVar(&offline, "offline", false, "skip all network calls; writes stay queued")

	open := func() (*app, error) { return newApp(configPath, offline) }

	cmd.AddCommand(
		newListCommand(open),
		newCreateCommand(open),
		newCompleteCommand(open),
		newDeleteCommand(open),
		newDuplicateCommand(open),
		newAddExerciseCommand(open),
		newAddSetCommand(open),
		newDoneSetCommand(open),
		newShareCommand(open),
		newStatusCommand(open),
		newSyncCommand(open),
	)
	return cmd
}

type opener func() (*app, error)

func newListCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the local workout snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			workouts, err := a.eng.Workouts(cmd.Context())
			if err != nil {
				return err
			}
			for _, entry := range workouts {
				w := entry.Workout
				serverID := "-"
				if w.ServerID != nil {
					serverID = strconv.FormatInt(*w.ServerID, 10)
				}
				fmt.Printf("#%d  %-30s  %-11s  server_id=%s\n", w.ID, w.Title, w.Status, serverID)
				for _, exercise := range entry.Exercises {
					fmt.Printf("    [%d] %s (order %d)\n", exercise.ID, exercise.ExerciseCode, exercise.OrderIndex)
					for _, set := range entry.Sets {
						if set.ExerciseID != exercise.ID {
							continue
						}
						fmt.Printf("        set %d: %s\n", set.ID, formatSet(set))
					}
				}
			}
			return nil
		},
	}
}

func formatSet(set domain.WorkoutSet) string {
	out := fmt.Sprintf("%d reps", set.Reps)
	if set.Weight != nil {
		out += fmt.Sprintf(" @ %gkg", *set.Weight)
	}
	if set.RPE != nil {
		out += fmt.Sprintf(" RPE %g", *set.RPE)
	}
	if set.DoneAt != nil {
		out += " (done)"
	}
	return out
}

func newCreateCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "create [title]",
		Short: "Create a draft workout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			title := ""
			if len(args) == 1 {
				title = args[0]
			}
			workout, err := a.eng.CreateWorkout(cmd.Context(), title)
			if err != nil {
				return err
			}
			fmt.Printf("created workout #%d %q (client_id %s)\n", workout.ID, workout.Title, workout.ClientID)
			return nil
		},
	}
}

func newCompleteCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <workout-id>",
		Short: "Mark a workout completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()
			return a.eng.CompleteWorkout(cmd.Context(), id)
		},
	}
}

func newDeleteCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <workout-id>",
		Short: "Delete a workout and its exercises",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()
			return a.eng.DeleteWorkout(cmd.Context(), id)
		},
	}
}

func newDuplicateCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <workout-id>",
		Short: "Copy a workout with its exercises and sets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			copied, err := a.eng.DuplicateWorkout(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("created workout #%d %q\n", copied.ID, copied.Title)
			return nil
		},
	}
}

func newAddExerciseCommand(open opener) *cobra.Command {
	var plannedSets int

	cmd := &cobra.Command{
		Use:   "add-exercise <workout-id> <exercise-code>",
		Short: "Add an exercise to a workout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			var planned *int
			if cmd.Flags().Changed("planned-sets") {
				planned = &plannedSets
			}
			exercise, err := a.eng.AddExercise(cmd.Context(), id, args[1], planned)
			if err != nil {
				return err
			}
			fmt.Printf("added exercise #%d (%s)\n", exercise.ID, exercise.ExerciseCode)
			return nil
		},
	}
	cmd.Flags().IntVar(&plannedSets, "planned-sets", 0, "planned number of sets")
	return cmd
}

func newAddSetCommand(open opener) *cobra.Command {
	var weight, rpe float64

	cmd := &cobra.Command{
		Use:   "add-set <exercise-id> <reps>",
		Short: "Add a planned set to an exercise",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			reps, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid reps %q", args[1])
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			var weightPtr, rpePtr *float64
			if cmd.Flags().Changed("weight") {
				weightPtr = &weight
			}
			if cmd.Flags().Changed("rpe") {
				rpePtr = &rpe
			}
			set, err := a.eng.AddSet(cmd.Context(), id, reps, weightPtr, rpePtr)
			if err != nil {
				return err
			}
			fmt.Printf("added set #%d\n", set.ID)
			return nil
		},
	}
	cmd.Flags().Float64Var(&weight, "weight", 0, "weight in kilograms")
	cmd.Flags().Float64Var(&rpe, "rpe", 0, "rate of perceived exertion (0-10)")
	return cmd
}

func newDoneSetCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "done-set <set-id>",
		Short: "Mark a set as performed now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			now := time.Now().UnixMilli()
			donePtr := &now
			return a.eng.UpdateSet(cmd.Context(), id, domain.SetChanges{DoneAt: &donePtr})
		},
	}
}

func newShareCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "share <workout-id>",
		Short: "Publish a workout to the community feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			outcome, err := a.eng.ShareWorkout(cmd.Context(), id)
			if err != nil {
				return err
			}
			if outcome.Queued {
				fmt.Println("share queued for the next sync")
			} else {
				fmt.Printf("shared (share_id %s)\n", outcome.ShareID)
			}
			return nil
		},
	}
}

func newStatusCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pending mutations and the pull watermark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			pending, err := a.eng.PendingCount(cmd.Context())
			if err != nil {
				return err
			}
			watermark, err := a.backend.LastPulledAt(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("pending mutations: %d\n", pending)
			if watermark == 0 {
				fmt.Println("last pull: never")
			} else {
				fmt.Printf("last pull: %s\n", time.UnixMilli(watermark).Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newSyncCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Force a pull-then-flush cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.eng.Refresh(cmd.Context()); err != nil {
				return err
			}
			pending, err := a.eng.PendingCount(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("sync complete, %d mutations still pending\n", pending)
			return nil
		},
	}
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}
