package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/roles"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Print the available roles and their required skills as YAML",
	Run: func(_ *cobra.Command, _ []string) {
		config, err := getConfig()
		if err != nil {
			log.Fatalf("getting a config: %v", err)
		}

		configured, err := roles.Decode(config.Roles)
		if err != nil {
			log.Fatalf("reading roles from config: %v", err)
		}

		zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating logger: %v", err)
		}

		catalog := roles.New(configured, zl)

		out, err := catalog.YAML()
		if err != nil {
			log.Fatalf("rendering roles: %v", err)
		}
		fmt.Print(string(out))
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}
