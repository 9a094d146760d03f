package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacobdurrah/auction-bdding/pkg/storage"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the persisted data set",
	Long: `Summarize the persisted listing snapshot and bid histories: when the
last scrape ran, how many listings it covered, and how many are being
tracked for bid changes.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	store, err := storage.NewManager(&cfg.Tracker)
	if err != nil {
		return err
	}

	listings, err := store.LoadListings()
	if err != nil {
		return err
	}
	history, err := store.LoadHistory()
	if err != nil {
		return err
	}

	if listings.UpdatedAt.IsZero() {
		fmt.Println("No scrape data yet. Run 'wcauction scrape' first.")
		return nil
	}

	fmt.Printf("Last scrape:      %s\n", listings.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Listings:         %d\n", listings.Count)
	fmt.Printf("Tracked:          %d\n", len(history.Histories))

	withBids := 0
	for _, l := range listings.Listings {
		if l.HasBids {
			withBids++
		}
	}
	fmt.Printf("With bids:        %d\n", withBids)

	if n := len(history.Summaries); n > 0 {
		last := history.Summaries[n-1]
		fmt.Printf("Last snapshot:    %s (%d changes)\n",
			last.Timestamp.Format("2006-01-02 15:04:05"), last.NewChanges)
	}
	return nil
}
