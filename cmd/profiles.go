package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/company-profiler/internal/store"
)

var (
	profilesLimit int
	profilesJSON  bool
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List stored company profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Store.DatabaseURL == "" {
			return eris.New("store.database_url is required")
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close()

		records, err := st.List(ctx, profilesLimit)
		if err != nil {
			return eris.Wrap(err, "list profiles")
		}

		if profilesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCOMPANY\tURL\tUPDATED")
		for _, rec := range records {
			name := "-"
			if rec.Profile.CompanyName != nil {
				name = *rec.Profile.CompanyName
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				rec.ID, name, rec.NormalizedURL, rec.UpdatedAt.UTC().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	profilesCmd.Flags().IntVar(&profilesLimit, "limit", 50, "max profiles to list")
	profilesCmd.Flags().BoolVar(&profilesJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(profilesCmd)
}
