package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emrgen/cadeia/internal/origin"
	"github.com/emrgen/cadeia/internal/service"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(treeCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(confirmCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(undoCmd())
	rootCmd.AddCommand(levelCmd())
	rootCmd.AddCommand(entryCmd())
}

func parseCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "parse <origin text>",
		Short:   "list the document codes cited by an origin text",
		Example: `cadeia parse "Transcrição nº 4.512"`,
		Args:    cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			codes := origin.ParseSorted(strings.Join(args, " "))
			if len(codes) == 0 {
				color.Yellow("no document codes found")
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Code", "Kind"})
			for _, code := range codes {
				table.Append([]string{code.String(), code.Kind.Label()})
			}
			table.Render()
		},
	}

	return command
}

func treeCmd() *cobra.Command {
	var parcelID string

	var required = []string{"parcel-id"}

	command := &cobra.Command{
		Use:     "tree",
		Short:   "show the chain of title of a parcel",
		Example: "cadeia tree -p <parcel-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, ctx := newClient()
			defer client.Close()

			tree, err := client.Tree(ctx, parcelID)
			if err != nil {
				logrus.Error(err)
				return
			}

			printTree(tree)
		},
	}

	command.Flags().StringVarP(&parcelID, "parcel-id", "p", "", "parcel id (required)")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func checkCmd() *cobra.Command {
	var req service.DuplicateCheckRequest

	var required = []string{"code", "office-id", "parcel-id"}

	command := &cobra.Command{
		Use:     "check",
		Short:   "check whether another parcel already has a document",
		Example: "cadeia check -c M1234 -o <office-id> -p <parcel-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, ctx := newClient()
			defer client.Close()

			res, err := client.CheckDuplicate(ctx, req)
			if err != nil {
				logrus.Error(err)
				return
			}

			printDuplicate(res)
		},
	}

	command.Flags().StringVarP(&req.Code, "code", "c", "", "document code, M1234 or T45 (required)")
	command.Flags().StringVarP(&req.OfficeID, "office-id", "o", "", "registry office id (required)")
	command.Flags().StringVarP(&req.ParcelID, "parcel-id", "p", "", "requesting parcel id (required)")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func confirmCmd() *cobra.Command {
	var token string

	var required = []string{"proposal"}

	command := &cobra.Command{
		Use:     "confirm",
		Short:   "import the chain offered by a duplicate check",
		Example: "cadeia confirm -k <proposal-token>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, ctx := newClient()
			defer client.Close()

			res, err := client.ConfirmImport(ctx, token)
			if err != nil {
				logrus.Error(err)
				return
			}

			printImport(res)
		},
	}

	command.Flags().StringVarP(&token, "proposal", "k", "", "proposal token (required)")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func importCmd() *cobra.Command {
	var parcelID string
	var docIDs []string

	var required = []string{"parcel-id", "doc-id"}

	command := &cobra.Command{
		Use:     "import",
		Short:   "share documents with a parcel",
		Example: "cadeia import -p <parcel-id> -d <doc-id> -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, ctx := newClient()
			defer client.Close()

			res, err := client.Import(ctx, unique(docIDs), parcelID)
			if err != nil {
				logrus.Error(err)
				return
			}

			printImport(res)
		},
	}

	command.Flags().StringVarP(&parcelID, "parcel-id", "p", "", "destination parcel id (required)")
	command.Flags().StringArrayVarP(&docIDs, "doc-id", "d", nil, "document id, repeatable (required)")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func undoCmd() *cobra.Command {
	var docID string

	var required = []string{"doc-id"}

	command := &cobra.Command{
		Use:     "undo",
		Short:   "remove the import record of a document",
		Example: "cadeia undo -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, ctx := newClient()
			defer client.Close()

			if err := client.UndoImport(ctx, docID); err != nil {
				logrus.Error(err)
				return
			}

			color.Green("import removed")
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id (required)")
	bindContextFlags(command)

	return command
}

func levelCmd() *cobra.Command {
	var docID string
	var level int
	var unpin bool

	var required = []string{"doc-id"}

	command := &cobra.Command{
		Use:     "level",
		Short:   "pin or clear the manual level of a document",
		Example: "cadeia level -d <doc-id> -l 2\ncadeia level -d <doc-id> --clear",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			if !unpin && !cmd.Flag("level").Changed {
				color.Red("missing: --level or --clear")
				return
			}

			client, ctx := newClient()
			defer client.Close()

			var pin *int
			if !unpin {
				pin = &level
			}
			if err := client.SetManualLevel(ctx, docID, pin); err != nil {
				logrus.Error(err)
				return
			}

			color.Green("level updated")
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id (required)")
	command.Flags().IntVarP(&level, "level", "l", 0, "manual level")
	command.Flags().BoolVar(&unpin, "clear", false, "clear the manual level")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func entryCmd() *cobra.Command {
	var docID string
	var date string
	var officeID string
	var req service.EntryRequest

	var required = []string{"doc-id", "number"}

	command := &cobra.Command{
		Use:     "entry",
		Short:   "record an entry on a document",
		Example: `cadeia entry -d <doc-id> -n R1 -k abertura --origin "Transcrição 4.512"`,
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
			if officeID != "" {
				req.OriginRegistryOfficeID = &officeID
			}

			client, ctx := newClient()
			defer client.Close()

			res, err := client.AddEntry(ctx, docID, req)
			if err != nil {
				logrus.Error(err)
				return
			}

			color.Green("entry %s created", res.Entry.ID)
			for _, edge := range res.Linked {
				printField("Linked", edge.From+" -> "+edge.To)
			}
			for i := range res.Duplicates {
				printDuplicate(&res.Duplicates[i])
			}
			if res.Tree != nil {
				printTree(res.Tree)
			}
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id (required)")
	command.Flags().StringVarP(&req.Number, "number", "n", "", "entry number (required)")
	command.Flags().StringVarP(&req.Kind, "kind", "k", "registro", "entry kind")
	command.Flags().StringVar(&req.Origin, "origin", "", "origin text")
	command.Flags().StringVar(&date, "date", "", "entry date, YYYY-MM-DD")
	command.Flags().StringVarP(&officeID, "origin-office-id", "o", "", "registry office of the origin")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func printTree(tree *service.TreePayload) {
	printField("Parcel", fmt.Sprintf("%s (%s)", tree.Parcel.Name, tree.Parcel.RegistrationNumber))
	if tree.Root == "" {
		color.Yellow("parcel has no documents")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Level", "Code", "Kind", "Shared", "Manual", "ID"})
	for _, doc := range tree.Documents {
		manual := ""
		if doc.ManualLevel != nil {
			manual = strconv.Itoa(*doc.ManualLevel)
		}
		table.Append([]string{strconv.Itoa(doc.Level), doc.Code, doc.Kind, strconv.FormatBool(doc.IsShared), manual, doc.ID})
	}
	table.Render()

	for _, edge := range tree.Edges {
		fmt.Printf("%s -> %s\n", edge.From, edge.To)
	}
	for _, u := range tree.Unresolved {
		color.Yellow("unresolved origin %s cited by %s", u.Code, u.DocumentID)
	}
	if tree.Truncated {
		color.Red("chain truncated, too many documents")
	}
}

func printDuplicate(res *service.DuplicateCheckResponse) {
	if !res.Exists {
		color.Green("no duplicate found")
		return
	}

	doc := res.MatchedDocument
	color.Magenta("document %s already belongs to parcel %s", doc.Code, doc.ParcelID)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Code", "Kind", "Parcel", "ID"})
	for _, d := range res.ImportableChain {
		table.Append([]string{d.Code, d.Kind, d.ParcelID, d.ID})
	}
	table.Render()

	if res.ProposalToken != "" {
		printField("Confirm with", "cadeia confirm -k "+res.ProposalToken)
	}
}

func printImport(res *service.ImportResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Code", "Status", "ID"})
	for _, item := range res.Items {
		table.Append([]string{item.Code, string(item.Status), item.DocumentID})
	}
	table.Render()

	printField("Imported", strconv.Itoa(res.Imported))
	printField("Skipped", strconv.Itoa(res.Skipped))
}

func printField(label, value string) {
	color.Set(color.FgCyan)
	fmt.Print(label)
	color.Unset()
	fmt.Printf(": %s\n", value)
}

// checkMissingFlags checks if the required flags are set and returns ok if they are set
func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if !cmd.Flag(required).Changed {
			missingFlags = append(missingFlags, required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) > 0 {
		var msg string
		for _, f := range missingFlags {
			msg += fmt.Sprintf("--%s ", f)
		}

		color.Red("missing: %s\n", msg)
		if len(providedFlags) > 0 {
			provided := strings.Join(providedFlags, " ")
			color.Green("provide: %s\n", provided)
		}

		cmd.Println("")

		_ = cmd.Usage()

		return true
	}

	return false
}

// unique returns a slice with unique elements
func unique(s []string) []string {
	seen := make(map[string]struct{}, len(s))
	j := 0
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		s[j] = v
		j++
	}
	return s[:j]
}
