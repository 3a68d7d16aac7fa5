package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/emrgen/cadeia"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configDir      = "./.tmp"
	configFileName = "cadeia"
	defaultServer  = "http://localhost:4001"
)

var (
	Token  string
	Server string
)

var contextCommand = &cobra.Command{
	Use:   "context",
	Short: "context commands",
}

func init() {
	contextCommand.AddCommand(setContextCommand())
	contextCommand.AddCommand(currentContextCommand())
	contextCommand.AddCommand(resetContextCommand())
}

type Context struct {
	Server string `json:"server" mapstructure:"server"`
	Token  string `json:"token" mapstructure:"token"`
}

// saves the context info to ./.tmp/cadeia.yml
func setContextCommand() *cobra.Command {
	var ctx Context
	command := &cobra.Command{
		Use:   "set",
		Short: "set context",
		Run: func(cmd *cobra.Command, args []string) {
			if ctx.Server == "" && ctx.Token == "" {
				color.Red(`missing: --server or --token`)
				return
			}

			current := readContext()
			if ctx.Server != "" {
				current.Server = ctx.Server
			}
			if ctx.Token != "" {
				current.Token = ctx.Token
			}

			if err := writeContext(current); err != nil {
				fmt.Println("error writing config file: ", err)
				return
			}
			fmt.Println("context saved")
		},
	}

	command.Flags().StringVarP(&ctx.Server, "server", "s", "", "server url")
	command.Flags().StringVarP(&ctx.Token, "token", "t", "", "token")

	return command
}

func currentContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "current",
		Short: "current context",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := readContext()
			printField("Server", ctx.Server)
			if ctx.Token == "" {
				printField("Token", "")
			} else {
				printField("Token", "****")
			}
		},
	}

	return command
}

func resetContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "reset",
		Short: "reset context",
		Run: func(cmd *cobra.Command, args []string) {
			if err := writeContext(Context{Server: defaultServer}); err != nil {
				fmt.Println("error writing config file: ", err)
				return
			}
			fmt.Println("context reset")
		},
	}

	return command
}

func writeContext(ctx Context) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	viper.SetConfigName(configFileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("yml")
	viper.Set("context", map[string]string{"server": ctx.Server, "token": ctx.Token})

	return viper.WriteConfigAs(configDir + "/" + configFileName + ".yml")
}

func readContext() Context {
	ctx := Context{Server: defaultServer}

	// no saved context yet
	path := configDir + "/" + configFileName + ".yml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return ctx
	}

	viper.SetConfigName(configFileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("error reading config file: ", err)
		return ctx
	}

	if err := viper.UnmarshalKey("context", &ctx); err != nil {
		fmt.Println("error unmarshalling config file: ", err)
	}
	if ctx.Server == "" {
		ctx.Server = defaultServer
	}

	return ctx
}

func bindContextFlags(command *cobra.Command) {
	command.Flags().StringVarP(&Token, "token", "t", "", "token, defaults to the saved context")
	command.Flags().StringVarP(&Server, "server", "s", "", "server url, defaults to the saved context")
}

// newClient builds an api client from the flags, falling back to the saved context.
func newClient() (cadeia.Client, context.Context) {
	ctx := readContext()
	if Token != "" {
		ctx.Token = Token
	}
	if Server != "" {
		ctx.Server = Server
	}

	client, err := cadeia.NewClient(ctx.Server, ctx.Token)
	if err != nil {
		logrus.Fatal(err)
	}

	return client, context.Background()
}
