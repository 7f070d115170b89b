package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ignite/kcheck/internal/store"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List recorded knowledge-check results",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		user, _ := cmd.Flags().GetString("user-id")
		course, _ := cmd.Flags().GetString("course-id")

		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		results, err := s.ResultRepo().ListResults(cmd.Context(), store.ResultFilter{
			UserID:   user,
			CourseID: course,
			Limit:    limit,
		})
		if err != nil {
			return fmt.Errorf("query results: %w", err)
		}

		if len(results) == 0 {
			fmt.Println("No knowledge-check results found.")
			return nil
		}

		fmt.Printf("%-19s  %-16s  %-18s  %-7s  %-7s  %s\n",
			"Completed", "User", "Course", "Lesson", "Score", "Result")
		fmt.Println(strings.Repeat("─", 84))

		for _, r := range results {
			outcome := "✓ pass"
			if !r.Passed {
				outcome = "✗ fail"
			}
			fmt.Printf("%-19s  %-16s  %-18s  %-7s  %-7s  %s\n",
				r.CompletedAt.Local().Format("2006-01-02 15:04:05"),
				truncate(r.UserID, 16),
				truncate(r.CourseID, 18),
				fmt.Sprintf("%d.%d", r.ModuleNum, r.LessonNum),
				fmt.Sprintf("%d/%d", r.Score, r.TotalQuestions),
				outcome,
			)
		}
		return nil
	},
}

var resultsLessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "Show pass rate and average score per lesson",
	RunE: func(cmd *cobra.Command, args []string) error {
		course, _ := cmd.Flags().GetString("course-id")

		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		averages, err := s.ResultRepo().LessonAverages(cmd.Context(), course)
		if err != nil {
			return fmt.Errorf("query lesson averages: %w", err)
		}

		if len(averages) == 0 {
			fmt.Println("No knowledge-check results found.")
			return nil
		}

		fmt.Printf("%-18s  %-7s  %8s  %8s  %9s\n", "Course", "Lesson", "Attempts", "Passed", "Avg Score")
		fmt.Println(strings.Repeat("─", 60))
		for _, a := range averages {
			fmt.Printf("%-18s  %-7s  %8d  %8d  %8.0f%%\n",
				truncate(a.CourseID, 18),
				fmt.Sprintf("%d.%d", a.ModuleNum, a.LessonNum),
				a.Attempts, a.Passes, a.AvgScorePct)
		}
		return nil
	},
}

func init() {
	resultsCmd.Flags().IntP("limit", "n", 20, "Number of results to show")
	resultsCmd.Flags().String("user-id", "", "Only results of this learner")
	resultsCmd.PersistentFlags().String("course-id", "", "Only results of this course")

	resultsCmd.AddCommand(resultsLessonsCmd)
}
