package cmd

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"contactform/internal/clix"
	"contactform/pkg/categorizer"
)

// classifyCmd runs the same categorization as the HTTP handler from the terminal.
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Categorize a single contact message",
	Example: `  contactform classify --name "Ada" --email ada@example.com \
    --message "We'd love to partner with you on an open source project."`,
	RunE: func(cmd *cobra.Command, args []string) error {
		submission, err := clix.ParseSubmission(cmd.Flags())
		if err != nil {
			return err
		}

		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		result, err := appInstance.Categorizer.Categorize(cmd.Context(), categorizer.CategorizationRequest{
			Message: submission.Message,
		})
		if err != nil {
			return fmt.Errorf("categorization failed: %w", err)
		}

		category := color.YellowString(string(result.Category))
		if result.Category.Known() {
			category = color.GreenString(string(result.Category))
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Name", "Email", "Category", "Attempts"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.Append([]string{
			submission.Name,
			submission.Email,
			category,
			strconv.Itoa(result.Attempts),
		})
		table.Render()
		return nil
	},
}

// categoriesCmd lists the labels the model may choose from.
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories messages are sorted into",
	RunE: func(cmd *cobra.Command, args []string) error {
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"#", "Category"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for i, c := range categorizer.Categories {
			table.Append([]string{strconv.Itoa(i + 1), string(c)})
		}
		table.Append([]string{"-", color.YellowString(string(categorizer.Uncategorized)) + " (unparseable response)"})
		table.Render()
		return nil
	},
}

func init() {
	clix.AddSubmissionFlags(classifyCmd.Flags())
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(categoriesCmd)
}
