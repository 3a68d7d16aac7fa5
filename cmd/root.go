package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cadeia",
	Short: "chain of title (cadeia dominial) tool",
	Example: `cadeia serve
cadeia parse "Transcrição nº 4.512 e M-77"
cadeia tree -p <parcel-id>
cadeia check -c M1234 -o <office-id> -p <parcel-id>
cadeia confirm -k <proposal-token>
cadeia import -p <parcel-id> -d <doc-id> -d <doc-id>
cadeia undo -d <doc-id>
cadeia level -d <doc-id> -l 2`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(contextCommand)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
