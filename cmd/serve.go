package cmd

import (
	"github.com/emrgen/cadeia/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var port string

	command := &cobra.Command{
		Use:   "serve",
		Short: "start the http server",
		Run: func(cmd *cobra.Command, args []string) {
			if err := server.Start(port); err != nil {
				logrus.Fatalf("error starting server: %v", err)
			}
		},
	}

	command.Flags().StringVarP(&port, "port", "P", "", "http port, defaults to HTTP_PORT")

	return command
}
