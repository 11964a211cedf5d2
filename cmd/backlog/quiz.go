package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Manage the study quiz collection",
}

var quizListCmd = &cobra.Command{
	Use:   "list",
	Short: "List quizzes with question counts",
	RunE:  runQuizList,
}

var quizListJSON bool

var quizImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a quiz document from a JSON file or stdin",
	RunE:  runQuizImport,
}

var quizImportIn string

var quizExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a quiz as a portable JSON document",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuizExport,
}

var quizExportOut string

var quizCreateCmd = &cobra.Command{
	Use:     "create <title>",
	Aliases: []string{"add"},
	Short:   "Create an empty quiz",
	Args:    cobra.ExactArgs(1),
	RunE:    runQuizCreate,
}

var quizRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a quiz",
	Args:    cobra.ExactArgs(1),
	RunE:    runQuizRm,
}

var quizShuffleCmd = &cobra.Command{
	Use:   "shuffle <id>",
	Short: "Shuffle question order and multiple-choice options",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuizShuffle,
}

var quizShuffleSeed int64

func init() {
	rootCmd.AddCommand(quizCmd)
	quizCmd.AddCommand(quizListCmd, quizCreateCmd, quizImportCmd, quizExportCmd, quizRmCmd, quizShuffleCmd)

	quizListCmd.Flags().BoolVar(&quizListJSON, "json", false, "Output as JSON")
	quizImportCmd.Flags().StringVar(&quizImportIn, "in", "-", "Input quiz JSON file ('-' for stdin)")
	quizExportCmd.Flags().StringVar(&quizExportOut, "out", "-", "Output file path ('-' for stdout)")
	quizShuffleCmd.Flags().Int64Var(&quizShuffleSeed, "seed", 0, "Shuffle seed (0 uses a random seed)")
}

func runQuizList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	quizzes, err := rt.svc.ListQuizzes(cmd.Context())
	if err != nil {
		return fmt.Errorf("list quizzes: %w", err)
	}

	if quizListJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(quizzes)
	}

	if len(quizzes) == 0 {
		fmt.Println("No quizzes found.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMC\tSA\tLA\tTITLE")
	for _, q := range quizzes {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
			q.ID, len(q.MultipleChoice), len(q.ShortAnswer), len(q.LongAnswer), q.Title)
	}
	return w.Flush()
}

func runQuizImport(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	var raw []byte
	if quizImportIn == "-" {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	} else {
		raw, err = os.ReadFile(quizImportIn)
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}
	}

	quiz, err := rt.svc.ImportQuiz(cmd.Context(), raw)
	if err != nil {
		return fmt.Errorf("import quiz: %w", err)
	}
	fmt.Printf("Imported quiz %s: %s\n", quiz.ID, quiz.Title)
	return nil
}

func runQuizExport(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	doc, err := rt.svc.ExportQuiz(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("export quiz: %w", err)
	}
	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode quiz json: %w", err)
	}
	encoded = append(encoded, '\n')

	if quizExportOut == "-" {
		_, err = os.Stdout.Write(encoded)
		return err
	}
	if err := os.WriteFile(quizExportOut, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

func runQuizCreate(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	quiz, err := rt.svc.CreateQuiz(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("create quiz: %w", err)
	}
	fmt.Printf("Created quiz %s: %s\n", quiz.ID, quiz.Title)
	return nil
}

func runQuizRm(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.svc.DeleteQuiz(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	fmt.Printf("Deleted quiz %s\n", args[0])
	return nil
}

func runQuizShuffle(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	quiz, err := rt.svc.ShuffleQuiz(cmd.Context(), args[0], quizShuffleSeed)
	if err != nil {
		return fmt.Errorf("shuffle quiz: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(quiz)
}
