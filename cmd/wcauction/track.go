package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacobdurrah/auction-bdding/pkg/models"
	"github.com/jacobdurrah/auction-bdding/pkg/storage"
)

// trackCmd represents the track command
var trackCmd = &cobra.Command{
	Use:   "track [auction-id]",
	Short: "Show tracked bid history and metrics",
	Long: `Show the tracked bid history for one listing, or a summary of every
tracked listing when no auction ID is given.`,
	Example: `  # Summarize all tracked listings
  wcauction track

  # Full history for one listing
  wcauction track 250900123`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	store, err := storage.NewManager(&cfg.Tracker)
	if err != nil {
		return err
	}
	doc, err := store.LoadHistory()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		history, ok := doc.Histories[args[0]]
		if !ok {
			return fmt.Errorf("no tracked history for auction %s", args[0])
		}
		printHistory(history)
		return nil
	}

	if len(doc.Histories) == 0 {
		fmt.Println("No tracked listings yet. Run 'wcauction scrape' first.")
		return nil
	}

	fmt.Printf("%-12s %-28s %8s %10s %6s %s\n",
		"AUCTION", "ADDRESS", "CHANGES", "LATEST", "SCORE", "LEVEL")
	for _, h := range doc.Histories {
		latest := 0.0
		if s := h.Latest(); s != nil {
			latest = s.CurrentBid
		}
		fmt.Printf("%-12s %-28s %8d %10.2f %6d %s\n",
			h.AuctionID, truncate(h.Address, 28), h.Metrics.TotalChanges,
			latest, h.Metrics.CompetitionScore, h.Metrics.CompetitionLevel)
	}
	return nil
}

func printHistory(h *models.ListingHistory) {
	fmt.Printf("Auction %s — %s\n", h.AuctionID, h.Address)
	fmt.Printf("First seen %s at $%.2f\n\n", h.FirstSeen.Format("2006-01-02 15:04"), h.FirstBid)

	for _, s := range h.Snapshots {
		line := fmt.Sprintf("  %s  $%.2f", s.Timestamp.Format("2006-01-02 15:04"), s.CurrentBid)
		if s.Change != 0 {
			line += fmt.Sprintf("  (%+.2f / %+.1f%%)", s.Change, s.ChangePercent)
		}
		fmt.Println(line)
	}

	m := h.Metrics
	fmt.Printf("\nChanges: %d  Velocity: %.2f/day  Increase: %+.2f (%+.1f%%)\n",
		m.TotalChanges, m.BidVelocity, m.TotalIncrease, m.TotalIncreasePercent)
	if m.LastChangeHours != nil {
		fmt.Printf("Last change: %.1f hours ago\n", *m.LastChangeHours)
	}
	fmt.Printf("Competition: %d (%s)\n", m.CompetitionScore, m.CompetitionLevel)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
