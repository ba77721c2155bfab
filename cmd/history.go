package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyaudit/internal/history"
	"github.com/abhisek/studyaudit/internal/screens/review"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect stored cognitive audits",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored audits, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		entries := history.New(s.Slot(historySlot), nil).Load(cmd.Context())
		if len(entries) == 0 {
			fmt.Println("No audits recorded yet.")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %6s  %s\n", "ID", "Date", "Score", "Title")
		fmt.Println(strings.Repeat("─", 90))
		for _, e := range entries {
			fmt.Printf("%-36s  %-16s  %5.0f%%  %s\n",
				e.ID,
				e.Time().Local().Format("2006-01-02 15:04"),
				e.Percentage,
				e.Title,
			)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the audit report of a stored entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, ok := history.New(s.Slot(historySlot), nil).Get(cmd.Context(), args[0])
		if !ok {
			return fmt.Errorf("audit %s not found", args[0])
		}

		fmt.Println(e.Time().Local().Format("Mon Jan 02, 2006 15:04"))
		fmt.Println()
		fmt.Println(review.Report(&e.Quiz, &e.Evaluation, 100))
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}
