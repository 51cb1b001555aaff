package main

import (
	"encoding/json"
	"fmt"

	"github.com/daviddao/taskdawn/internal/digest"
	"github.com/daviddao/taskdawn/internal/display"
	"github.com/daviddao/taskdawn/internal/types"
	"github.com/spf13/cobra"
)

var previewAccounts []string

type previewOutput struct {
	Account string       `json:"account"`
	Subject string       `json:"subject,omitempty"`
	Digest  types.Digest `json:"digest"`
	Lists   []string     `json:"lists,omitempty"`
	Error   string       `json:"error,omitempty"`
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Rank tasks and show each digest without sending",
	Long:  "Read every account's tasks and print the digest it would receive. Nothing is created or sent, and the weekday gate does not apply.",
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := cfg.Select(previewAccounts...)
		if err != nil {
			return err
		}

		r := newRunner(cfg)
		r.ReadOnly = true
		r.Printer = nil

		var outputs []previewOutput
		for _, acct := range accounts {
			po := previewOutput{Account: acct.Email}

			provider, err := r.Providers(cmd.Context(), acct)
			if err == nil {
				prep, perr := r.Prepare(cmd.Context(), acct, provider)
				if perr == nil {
					po.Subject = prep.Subject
					po.Digest = digest.Build(prep.Top(), len(prep.Ranked))
					for _, l := range prep.Lists {
						po.Lists = append(po.Lists, l.Title)
					}
				}
				err = perr
			}
			if err != nil {
				po.Error = err.Error()
				log.Error("preview failed", "account", acct.Email, "error", err)
			}
			outputs = append(outputs, po)

			if jsonOutput {
				continue
			}
			printer.Header(acct.Label())
			if po.Error != "" {
				printer.ErrorMsg("%s", po.Error)
				printer.Blank()
				continue
			}
			printer.SubHeader(fmt.Sprintf("Subject: %s  ·  lists: %d", po.Subject, len(po.Lists)))
			printer.Blank()
			printer.Printf("%s", digest.Render(po.Digest))
			printer.Blank()
			printer.Printf("%s", display.Dim.Render("─────"))
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(outputs)
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().StringSliceVar(&previewAccounts, "account", nil, "Only preview these account emails")
	rootCmd.AddCommand(previewCmd)
}
