package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [ID]",
	Short: "View save history, or the steps of one save",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "History")
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid save id %q", args[0])
			}
			steps, err := a.Steps(id)
			if err != nil {
				return err
			}
			if len(steps) == 0 {
				fmt.Println("No steps recorded.")
				return nil
			}
			for i, st := range steps {
				if st.LocalID != st.RealID {
					fmt.Printf("%3d  %-8s %-7s %s -> %s\n", i, st.Op, st.Kind, st.LocalID, st.RealID)
				} else {
					fmt.Printf("%3d  %-8s %-7s %s\n", i, st.Op, st.Kind, st.LocalID)
				}
			}
			return nil
		}

		ops, err := a.History(limit)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			fmt.Println("No saves recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				d := op.FinishedAt.Time.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-36s  %s  %-8s  +%d ~%d -%d r%d  %s\n",
				op.ID,
				op.CourseID,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				op.Creates, op.Updates, op.Deletes, op.Reorders,
				duration,
			)
			if op.Error != "" {
				fmt.Printf("    %s\n", op.Error)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of saves to show")
}
