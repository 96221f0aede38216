package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-study/internal/generation"
	"github.com/p-n-ai/pai-study/internal/quiz"
)

func (a *app) planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a study plan for weak areas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gradeID, _ := cmd.Flags().GetInt("grade")
			examID, _ := cmd.Flags().GetString("exam")
			weak, _ := cmd.Flags().GetString("weak")
			days, _ := cmd.Flags().GetInt("days")

			c, err := a.catalogFor(cmd)
			if err != nil {
				return err
			}
			grade, exam, err := c.Target(gradeID, examID)
			if err != nil {
				return err
			}
			gen, err := a.newGenerator()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, err = gen.StreamStudyPlan(cmd.Context(), generation.StudyPlanInput{
				Grade:      grade.Name,
				TargetExam: exam.Name,
				WeakAreas:  generation.ParseWeakAreas(weak),
				StudyDays:  days,
			}, func(chunk string) error {
				_, err := io.WriteString(out, chunk)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().Int("grade", 0, "Grade ID")
	cmd.Flags().String("exam", "", "Target exam ID")
	cmd.Flags().String("weak", "", `Comma-separated weak areas, e.g. "Trigonometry, Organic Chemistry"`)
	_ = cmd.MarkFlagRequired("grade")
	cmd.Flags().Int("days", 7, "Length of the plan in days (1-30)")
	_ = cmd.MarkFlagRequired("weak")
	return cmd
}

func (a *app) quizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Take a practice quiz on a topic",
		Long:  "Generate a practice quiz and take it interactively. Answer each question with the option number; end of input submits the quiz.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gradeID, _ := cmd.Flags().GetInt("grade")
			examID, _ := cmd.Flags().GetString("exam")
			topic, _ := cmd.Flags().GetString("topic")
			n, _ := cmd.Flags().GetInt("questions")

			c, err := a.catalogFor(cmd)
			if err != nil {
				return err
			}
			grade, exam, err := c.Target(gradeID, examID)
			if err != nil {
				return err
			}
			gen, err := a.newGenerator()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.ErrOrStderr(), "Generating quiz...")
			q, err := gen.RequestQuiz(cmd.Context(), generation.QuizInput{
				Topic:             topic,
				GradeLevel:        grade.Name,
				ExamType:          exam.Name,
				NumberOfQuestions: n,
			})
			if err != nil {
				return err
			}
			session, err := quiz.NewSession(*q)
			if err != nil {
				return err
			}
			return takeQuiz(session, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().Int("grade", 0, "Grade ID")
	cmd.Flags().String("exam", "", "Target exam ID")
	cmd.Flags().String("topic", "", "Quiz topic")
	cmd.Flags().IntP("questions", "n", 0, "Number of questions (default from STUDY_GENERATION_DEFAULT_QUESTIONS)")
	_ = cmd.MarkFlagRequired("grade")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

// takeQuiz runs session against a line-oriented terminal until it is
// submitted, then prints the review.
func takeQuiz(s *quiz.Session, in io.Reader, out io.Writer) error {
	q := s.Quiz()
	fmt.Fprintf(out, "%s\n", q.Title)

	scanner := bufio.NewScanner(in)
	for !s.Submitted() {
		i := s.CurrentIndex()
		question := q.Questions[i]
		fmt.Fprintf(out, "\nQuestion %d of %d (%.0f%%)\n%s\n", i+1, s.Len(), s.Progress(), question.Question)
		for j, o := range question.Options {
			fmt.Fprintf(out, "  %d) %s\n", j+1, o)
		}
		fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read answer: %w", err)
			}
			fmt.Fprintln(out)
			s.Submit()
			break
		}

		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || choice < 1 || choice > len(question.Options) {
			fmt.Fprintf(out, "Enter a number between 1 and %d.\n", len(question.Options))
			continue
		}
		if err := s.SelectAnswer(question.Options[choice-1]); err != nil {
			return err
		}
		if err := s.Next(); err != nil && !errors.Is(err, quiz.ErrSubmitted) {
			return err
		}
	}

	printReview(s, out)
	return nil
}

func printReview(s *quiz.Session, out io.Writer) {
	fmt.Fprintf(out, "\nScore: %d/%d\n", s.Score(), s.Len())
	for _, item := range s.Review() {
		fmt.Fprintf(out, "\n%d. %s\n", item.Index+1, item.Question)
		for _, o := range item.Options {
			fmt.Fprintf(out, "  %s %s\n", reviewMark(o.State), o.Option)
		}
	}
}

func reviewMark(state quiz.AnswerState) string {
	switch state {
	case quiz.StateCorrect:
		return "✓"
	case quiz.StateIncorrect:
		return "✗"
	default:
		return " "
	}
}
