package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-study/internal/catalog"
)

func (a *app) gradesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grades",
		Short: "List grades",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalogFor(cmd)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, g := range c.Grades() {
				fmt.Fprintf(tw, "%d\t%s\n", g.ID, g.Name)
			}
			return tw.Flush()
		},
	}
}

func (a *app) examsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exams",
		Short: "List exams offered to a grade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			grade, _ := cmd.Flags().GetInt("grade")
			c, err := a.catalogFor(cmd)
			if err != nil {
				return err
			}
			if _, ok := c.Grade(grade); !ok {
				return fmt.Errorf("unknown grade %d", grade)
			}

			exams := c.ExamsForGrade(grade)
			if len(exams) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No exams for this grade.")
				return nil
			}
			def, _ := c.DefaultExam(grade)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDEFAULT")
			for _, e := range exams {
				mark := ""
				if e.ID == def.ID {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Name, mark)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Int("grade", 0, "Grade ID")
	_ = cmd.MarkFlagRequired("grade")
	return cmd
}

func (a *app) resourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "List resources for a grade and exam",
		Long:  "List resources for a grade and exam. Without --exam the grade's default exam is used.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			grade, _ := cmd.Flags().GetInt("grade")
			examID, _ := cmd.Flags().GetString("exam")
			kind, _ := cmd.Flags().GetString("type")
			byTopic, _ := cmd.Flags().GetBool("by-topic")

			c, err := a.catalogFor(cmd)
			if err != nil {
				return err
			}
			sel, ok := c.Select(grade, examID)
			if !ok {
				return fmt.Errorf("unknown grade %d", grade)
			}

			resources, err := resourceTab(sel.Resources, kind)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if sel.Exam != nil {
				fmt.Fprintf(out, "%s, %s\n\n", sel.Grade.Name, sel.Exam.Name)
			}
			if len(resources) == 0 {
				fmt.Fprintln(out, "No resources found.")
				return nil
			}

			if byTopic {
				return printTopics(out, catalog.GroupByTopic(resources))
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tTOPIC\tDIFFICULTY\tTITLE\tURL")
			for _, r := range resources {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Type, r.Topic, r.Difficulty, r.Title, r.URL)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Int("grade", 0, "Grade ID")
	cmd.Flags().String("exam", "", "Exam ID")
	cmd.Flags().String("type", "all", "Resource tab: all, youtube, notes or past-papers")
	cmd.Flags().Bool("by-topic", false, "Group resources by subject, dropping duplicate links")
	_ = cmd.MarkFlagRequired("grade")
	return cmd
}

func printTopics(w io.Writer, groups []catalog.TopicGroup) error {
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", g.Topic)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, r := range g.Resources {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", r.Type, r.Difficulty, r.Title, r.URL)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func resourceTab(tabs catalog.ResourceTabs, kind string) ([]catalog.Resource, error) {
	switch strings.ToLower(kind) {
	case "", "all":
		return tabs.All, nil
	case "youtube":
		return tabs.YouTube, nil
	case "notes", "pdf":
		return tabs.Notes, nil
	case "past-papers", "past-paper":
		return tabs.PastPapers, nil
	default:
		return nil, fmt.Errorf("unknown resource type %q", kind)
	}
}

func (a *app) weightageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weightage",
		Short: "Show an exam's subject weightage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			examID, _ := cmd.Flags().GetString("exam")
			xlsxPath, _ := cmd.Flags().GetString("xlsx")

			c, err := a.catalogFor(cmd)
			if err != nil {
				return err
			}
			exam, ok := c.Exam(examID)
			if !ok {
				return fmt.Errorf("unknown exam %q", examID)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s weightage\n\n", exam.Name)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, sw := range catalog.SortedWeightage(exam) {
				fmt.Fprintf(tw, "%s\t%g%%\t%s\n", sw.Subject, sw.Weightage, strings.Repeat("█", int(sw.Weightage/5)))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if xlsxPath == "" {
				return nil
			}
			f, err := os.Create(xlsxPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", xlsxPath, err)
			}
			if err := catalog.WriteWeightageWorkbook(f, exam); err != nil {
				_ = f.Close()
				return fmt.Errorf("write workbook: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", xlsxPath, err)
			}
			fmt.Fprintf(out, "\nWrote %s\n", xlsxPath)
			return nil
		},
	}
	cmd.Flags().String("exam", "", "Exam ID")
	cmd.Flags().String("xlsx", "", "Also write the weightage to this .xlsx file")
	_ = cmd.MarkFlagRequired("exam")
	return cmd
}
