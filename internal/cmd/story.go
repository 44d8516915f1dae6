package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/rudder/internal/story"
)

var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Work with PRD story files",
	Long: `Commands for inspecting a PRD markdown file: listing its stories
and finding the next one to work on.

Stories are "### US-<n>: Title" headings. A "[x]" checkbox before the ID
marks a story complete; checklist items in the body count as acceptance
criteria.`,
}

var storyListCmd = &cobra.Command{
	Use:   "list [prd-file]",
	Short: "List the stories in a PRD",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStoryList,
}

var storyNextCmd = &cobra.Command{
	Use:   "next [prd-file]",
	Short: "Show the first pending story",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStoryNext,
}

var storyJSON bool

func init() {
	storyListCmd.Flags().BoolVar(&storyJSON, "json", false, "Output as JSON")
	storyNextCmd.Flags().BoolVar(&storyJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(storyCmd)
	storyCmd.AddCommand(storyListCmd)
	storyCmd.AddCommand(storyNextCmd)
}

// prdPath returns the PRD file argument, defaulting to prd.md in the
// current directory.
func prdPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "prd.md"
}

func runStoryList(cmd *cobra.Command, args []string) error {
	path := prdPath(args)
	doc, err := story.ParseFile(path)
	if err != nil {
		return err
	}

	if storyJSON {
		return printJSON(doc)
	}

	printStoryList(path, doc)
	return nil
}

func printStoryList(path string, doc story.Document) {
	fmt.Println(sectionHeader(fmt.Sprintf("Stories (%s)", path)))
	fmt.Println()

	if doc.Total() == 0 {
		fmt.Println("No stories found.")
		fmt.Println("Stories are '### US-<n>: Title' headings, with '### [x] US-<n>: ...' once complete.")
		return
	}

	for _, s := range doc.Stories {
		glyph := mutedStyle.Render("○")
		if s.Completed {
			glyph = goodStyle.Render("✓")
		}
		fmt.Printf("%s %-8s %-42s %d criteria\n", glyph, s.ID, truncateANSI(s.Title, 42), s.CriteriaCount)
	}

	fmt.Println()
	fmt.Printf("%d of %d complete, %d remaining\n", doc.Total()-doc.Remaining(), doc.Total(), doc.Remaining())
}

func runStoryNext(cmd *cobra.Command, args []string) error {
	path := prdPath(args)
	doc, err := story.ParseFile(path)
	if err != nil {
		return err
	}

	next, ok := doc.NextPending()

	if storyJSON {
		var pending *story.Story
		if ok {
			pending = &next
		}
		return printJSON(struct {
			Story     *story.Story `json:"story"`
			Remaining int          `json:"remaining"`
			Total     int          `json:"total"`
		}{pending, doc.Remaining(), doc.Total()})
	}

	fmt.Println(sectionHeader("Next Story"))
	fmt.Println()

	if doc.Total() == 0 {
		fmt.Println("No stories found.")
		fmt.Println("Stories are '### US-<n>: Title' headings, with '### [x] US-<n>: ...' once complete.")
		return nil
	}
	if !ok {
		fmt.Println(goodStyle.Render(fmt.Sprintf("All %d stories are complete.", doc.Total())))
		return nil
	}

	fmt.Printf("%s: %s\n", titleStyle.Render(next.ID), next.Title)
	fmt.Printf("Criteria:  %d\n", next.CriteriaCount)
	fmt.Printf("Remaining: %d of %d\n", doc.Remaining(), doc.Total())
	if next.Body != "" {
		fmt.Println()
		fmt.Println(next.Body)
	}
	return nil
}
