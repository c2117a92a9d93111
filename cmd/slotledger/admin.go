package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/slotledger/internal/importer"
	"github.com/mmynk/slotledger/internal/ledger"
	"github.com/mmynk/slotledger/internal/models"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			return store.Close()
		},
	}

	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Load CSV exports into the database",
	}

	importRecordsCmd = &cobra.Command{
		Use:   "records <file.csv>",
		Short: "Append transaction records (columns: date,time,giver,claimant,status,swap_requested)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := importer.ImportRecords(cmd.Context(), store, f)
			if err != nil {
				return err
			}
			slog.Info("Records imported", "file", args[0], "count", n)
			return nil
		},
	}

	importParticipantsCmd = &cobra.Command{
		Use:   "participants <file.csv>",
		Short: "Upsert directory entries (columns: name,contact,opted_in,role,color)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := importer.ImportParticipants(cmd.Context(), store, f)
			if err != nil {
				return err
			}
			slog.Info("Participants imported", "file", args[0], "count", n)
			return nil
		},
	}

	overviewCmd = &cobra.Command{
		Use:   "overview",
		Short: "Print balances and payment instructions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pricing, err := cfg.Pricing.Pricing()
			if err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ov, err := ledger.NewFacade(store, store, pricing).Overview(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PARTICIPANT\tCREDITS\tGIVEN\tCLAIMED\tSETTLED")
			for _, b := range ov.Balances {
				fmt.Fprintf(w, "%s\t%s %s\t%d\t%d\t%d\n",
					b.Participant, b.Credits.StringFixed(2), cfg.Pricing.Currency,
					b.SlotsGivenAway, b.SlotsClaimed, b.SlotsAlreadySettled)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out)
			for _, in := range ov.Instructions {
				fmt.Fprintln(out, in.Description)
			}
			fmt.Fprintf(out, "\n%d participants, %s %s outstanding, %d active / %d settled slots\n",
				ov.Totals.Participants, ov.Totals.OutstandingCredit.StringFixed(2), cfg.Pricing.Currency,
				ov.Totals.ActiveSlots, ov.Totals.SettledSlots)
			return nil
		},
	}

	promoteCmd = &cobra.Command{
		Use:   "promote <email> [member|operator]",
		Short: "Set the role of an account (default operator)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := models.RoleOperator
			if len(args) == 2 {
				role = models.Role(strings.ToLower(args[1]))
			}
			if role != models.RoleOperator && role != models.RoleMember {
				return fmt.Errorf("unknown role %q", args[1])
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SetUserRole(cmd.Context(), args[0], role); err != nil {
				return err
			}
			slog.Info("Role updated", "email", args[0], "role", role)
			return nil
		},
	}
)
