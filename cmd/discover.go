package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var discoverCountryName string

var discoverCmd = &cobra.Command{
	Use:   "discover [country-id]",
	Short: "Run the discovery stage for a country",
	Long:  "Runs a discovery batch for an existing country, or creates the country first when --create is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		var countryID string
		switch {
		case discoverCountryName != "":
			country, err := e.Ctrl.CreateCountry(cmd.Context(), discoverCountryName, "", "")
			if err != nil {
				return err
			}
			countryID = country.ID
			zap.L().Info("created country",
				zap.String("id", country.ID),
				zap.String("name", country.Name),
			)
		case len(args) == 1:
			countryID = args[0]
		default:
			return cmd.Help()
		}

		smes, err := e.Ctrl.Discover(cmd.Context(), countryID)
		if err != nil {
			return err
		}

		for _, sme := range smes {
			zap.L().Info("discovered sme",
				zap.String("id", sme.ID),
				zap.String("name", sme.Name),
				zap.String("industry", sme.Industry),
				zap.Int("opportunity_score", sme.OpportunityScore),
			)
		}
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverCountryName, "create", "", "create a country with this name and discover into it")
	rootCmd.AddCommand(discoverCmd)
}
