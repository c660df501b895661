package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/persona/internal/typedesc"
)

var typesCmd = &cobra.Command{
	Use:   "types [CODE]",
	Short: "List the sixteen types or describe one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := typedesc.Default()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			listTypes(c)
			return nil
		}
		return describeType(c, args[0])
	},
}

func listTypes(c *typedesc.Catalog) {
	for _, fam := range c.Families() {
		fmt.Println(fam.Title)
		for _, code := range fam.Members {
			desc, err := c.Describe(code)
			if err != nil {
				continue
			}
			fmt.Printf("  %s  %s\n", code, desc.Title)
		}
		fmt.Println()
	}
}

func describeType(c *typedesc.Catalog, code string) error {
	code = strings.ToUpper(code)
	desc, err := c.Describe(code)
	if err != nil {
		return err
	}
	stack, err := c.Stack(code)
	if err != nil {
		return err
	}

	sep := strings.Repeat("─", 60)
	fmt.Printf("%s  %s\n", code, desc.Title)
	if fam, ok := c.FamilyOf(code); ok {
		fmt.Printf("Family: %s (related: %s)\n", fam.Title, strings.Join(c.Compatible(code), ", "))
	}
	fmt.Println(sep)
	fmt.Println(desc.Overview)

	fmt.Println()
	fmt.Println("Cognitive functions")
	for _, p := range stack.Positions() {
		fmt.Printf("  %-10s %s\n", p[0], p[1])
	}

	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Println()
		fmt.Println(title)
		for _, it := range items {
			fmt.Println("  •", it)
		}
	}
	section("Strengths", desc.Strengths)
	section("Weaknesses", desc.Weaknesses)
	section("Careers", desc.CareerMatches)
	section("Famous examples", desc.FamousExamples)

	fmt.Println()
	fmt.Println("Relationships")
	fmt.Println(" ", desc.RelationshipStyle)
	return nil
}
