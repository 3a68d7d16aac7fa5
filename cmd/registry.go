package cmd

import (
	"os"
	"time"

	"github.com/emrgen/cadeia/internal/service"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var officeCmd = &cobra.Command{
	Use:   "office",
	Short: "registry office commands",
}

var parcelCmd = &cobra.Command{
	Use:   "parcel",
	Short: "parcel commands",
}

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "document commands",
}

func init() {
	rootCmd.AddCommand(officeCmd)
	officeCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	officeCmd.AddCommand(createOfficeCmd())

	rootCmd.AddCommand(parcelCmd)
	parcelCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	parcelCmd.AddCommand(createParcelCmd())
	parcelCmd.AddCommand(deleteParcelCmd())
	parcelCmd.AddCommand(listImportsCmd())

	rootCmd.AddCommand(documentCmd)
	documentCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	documentCmd.AddCommand(createDocumentCmd())
}

func createOfficeCmd() *cobra.Command {
	var req service.OfficeRequest

	var required = []string{"name"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a registry office",
		Example: `cadeia office create -n "1º Ofício de Campinas" --cns 12.345-6 --city Campinas --state SP`,
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, ctx := newClient()
			defer client.Close()

			office, err := client.CreateOffice(ctx, req)
			if err != nil {
				logrus.Error(err)
				return
			}

			color.Green("registry office created with id: %s", office.ID)
		},
	}

	command.Flags().StringVarP(&req.Name, "name", "n", "", "office name (required)")
	command.Flags().StringVar(&req.CNS, "cns", "", "national registry code")
	command.Flags().StringVar(&req.City, "city", "", "city")
	command.Flags().StringVar(&req.State, "state", "", "state")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func createParcelCmd() *cobra.Command {
	var req service.ParcelRequest

	var required = []string{"name"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a parcel",
		Example: `cadeia parcel create -n "Fazenda Santa Rita" -r 4512`,
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, ctx := newClient()
			defer client.Close()

			parcel, err := client.CreateParcel(ctx, req)
			if err != nil {
				logrus.Error(err)
				return
			}

			color.Green("parcel created with id: %s", parcel.ID)
		},
	}

	command.Flags().StringVarP(&req.Name, "name", "n", "", "parcel name (required)")
	command.Flags().StringVarP(&req.RegistrationNumber, "registration", "r", "", "registration (matrícula) number")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func deleteParcelCmd() *cobra.Command {
	var parcelID string

	var required = []string{"parcel-id"}

	command := &cobra.Command{
		Use:   "delete",
		Short: "delete a parcel",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, ctx := newClient()
			defer client.Close()

			if err := client.DeleteParcel(ctx, parcelID); err != nil {
				logrus.Error(err)
				return
			}

			color.Green("parcel deleted")
		},
	}

	command.Flags().StringVarP(&parcelID, "parcel-id", "p", "", "parcel id (required)")
	bindContextFlags(command)

	return command
}

func listImportsCmd() *cobra.Command {
	var parcelID string

	var required = []string{"parcel-id"}

	command := &cobra.Command{
		Use:   "imports",
		Short: "list the documents imported into a parcel",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, ctx := newClient()
			defer client.Close()

			imports, err := client.ListImports(ctx, parcelID)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Document", "Imported By", "Imported At"})
			for _, record := range imports {
				table.Append([]string{record.DocumentID, record.ImportedBy, record.ImportedAt.Format(time.RFC3339)})
			}
			table.Render()
		},
	}

	command.Flags().StringVarP(&parcelID, "parcel-id", "p", "", "parcel id (required)")
	bindContextFlags(command)

	return command
}

func createDocumentCmd() *cobra.Command {
	var parcelID string
	var date string
	var req service.DocumentRequest

	var required = []string{"parcel-id", "code", "office-id"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "register a document owned by a parcel",
		Example: "cadeia document create -p <parcel-id> -c M4512 -o <office-id> --date 1987-03-02",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			if date != "" {
				d, err := time.Parse(time.DateOnly, date)
				if err != nil {
					color.Red("invalid date, expected YYYY-MM-DD")
					return
				}
				req.Date = &d
			}

			client, ctx := newClient()
			defer client.Close()

			doc, err := client.CreateDocument(ctx, parcelID, req)
			if err != nil {
				logrus.Error(err)
				return
			}

			color.Green("document %s created with id: %s", doc.Code, doc.ID)
		},
	}

	command.Flags().StringVarP(&parcelID, "parcel-id", "p", "", "owning parcel id (required)")
	command.Flags().StringVarP(&req.Code, "code", "c", "", "document code, M1234 or T45 (required)")
	command.Flags().StringVarP(&req.RegistryOfficeID, "office-id", "o", "", "registry office id (required)")
	command.Flags().StringVar(&date, "date", "", "document date, YYYY-MM-DD")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}
