package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/daviddao/taskdawn/internal/display"
	"github.com/spf13/cobra"
)

type accountOutput struct {
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Transport    string    `json:"transport"`
	ClientID     string    `json:"client_id"`
	LastDelivery time.Time `json:"last_delivery,omitempty"`
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List configured accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLedger()
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
		}

		var out []accountOutput
		for _, a := range cfg.AccountList() {
			ao := accountOutput{
				Email:     a.Email,
				Name:      a.Name,
				Transport: a.Mail.Transport,
				ClientID:  a.Google.ClientID,
			}
			if store != nil {
				last, err := store.LastDelivery(a.Email)
				if err != nil {
					log.Warn("could not read ledger", "account", a.Email, "error", err)
				}
				ao.LastDelivery = last
			}
			out = append(out, ao)
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, display.Bold.Render(fmt.Sprintf("Accounts (%d)", len(out))))
		fmt.Fprintln(w)
		for _, a := range out {
			name := a.Name
			if name == "" {
				name = display.AccountLabel(a.Email)
			}
			last := ""
			if !a.LastDelivery.IsZero() {
				last = fmt.Sprintf("(last digest: %s)", display.TimeAgo(a.LastDelivery))
			}
			fmt.Fprintf(w, "  %-30s %-14s %-6s %s  %s\n",
				a.Email, display.Truncate(name, 14), a.Transport,
				display.MaskSecret(a.ClientID), display.Dim.Render(last))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}
