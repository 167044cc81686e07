package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ikigai-wellness/ikigai/internal/app/engagement"
	"github.com/ikigai-wellness/ikigai/internal/app/quiz"
	"github.com/ikigai-wellness/ikigai/internal/domain"
)

func init() {
	rootCmd.AddCommand(quizCmd)
}

var quizCmd = &cobra.Command{
	Use:   "quiz MODULE",
	Short: "Answer a module's questionnaire interactively",
	Long: `Walk through a module one question at a time. Submitting the last
answer completes the module. A completed module shows its stored answers.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuiz,
}

func runQuiz(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	m, ok := d.Catalog.Module(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrModuleNotFound, args[0])
	}
	before := d.Engine.Progress()
	if !before.IsModuleCompleted(m.ID) && !engagement.ModuleUnlocked(d.Catalog, before, m.ID) {
		return fmt.Errorf("module %s is locked: complete the previous module of %s first", m.ID, m.IslandID)
	}

	sess := quiz.Open(d.Engine, m)
	out := cmd.OutOrStdout()
	if err := runQuizLoop(sess, cmd.InOrStdin(), out); err != nil {
		return err
	}
	if sess.State() == quiz.Finished && !sess.ReadOnly() {
		printGain(out, before, d.Engine.Progress())
	}
	return nil
}

// runQuizLoop drives sess from line input until it finishes, the input
// ends, or the user quits.
func runQuizLoop(sess *quiz.Session, in io.Reader, out io.Writer) error {
	m := sess.Module()
	fmt.Fprintf(out, ">>> %s %s (%d questions)\n", m.Icon, m.Title, len(m.Questions))

	if sess.ReadOnly() {
		fmt.Fprintln(out, "Already completed. Your answers:")
		printAnswers(out, m, sess.Responses())
		return nil
	}
	fmt.Fprintln(out, "Type /back for the previous question, /quit to stop.")

	scanner := newLineScanner(in)
	for sess.State() == quiz.Answering {
		q, ok := sess.Current()
		if !ok {
			sess.Advance()
			break
		}
		printQuestion(out, sess.Step(), len(m.Questions), q, sess.Responses())

		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		raw := scanner.Text()
		input := strings.TrimSpace(raw)

		switch input {
		case "/quit", "/exit":
			fmt.Fprintln(out, "Stopped. Answers were not saved.")
			return nil
		case "/back":
			if !sess.Retreat() {
				fmt.Fprintln(out, "Already at the first question.")
			}
			continue
		}

		if input != "" {
			if err := applyInput(sess, q, raw); err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			// Checkbox lines toggle; an empty line moves on.
			if q.Type == domain.QuestionCheckbox {
				continue
			}
		}
		if !sess.Advance() {
			fmt.Fprintln(out, "An answer is required.")
		}
	}

	fmt.Fprintln(out, "Module completed!")
	return nil
}

// applyInput turns one line into an answer for q. Input is checked here
// against the question's shape; the session stores whatever it is given.
func applyInput(sess *quiz.Session, q domain.Question, raw string) error {
	input := strings.TrimSpace(raw)
	switch q.Type {
	case domain.QuestionScale:
		n, err := strconv.Atoi(input)
		if err != nil || n < 1 || n > q.ScaleMax() {
			return fmt.Errorf("enter a number from 1 to %d", q.ScaleMax())
		}
		sess.RecordAnswer(q.ID, domain.ScaleAnswer(n))
	case domain.QuestionMultipleChoice:
		id, ok := optionFor(q, input)
		if !ok {
			return errors.New("pick one option by number")
		}
		sess.RecordAnswer(q.ID, domain.ChoiceAnswer(id))
	case domain.QuestionCheckbox:
		for _, tok := range strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == ' ' }) {
			id, ok := optionFor(q, tok)
			if !ok {
				return fmt.Errorf("unknown option %q", tok)
			}
			sess.Toggle(q.ID, id)
		}
	case domain.QuestionText:
		sess.RecordAnswer(q.ID, domain.TextAnswer(raw))
	}
	return nil
}

// optionFor resolves a 1-based option number or an option id.
func optionFor(q domain.Question, tok string) (string, bool) {
	if n, err := strconv.Atoi(tok); err == nil {
		if n >= 1 && n <= len(q.Options) {
			return q.Options[n-1].ID, true
		}
		return "", false
	}
	if q.HasOption(tok) {
		return tok, true
	}
	return "", false
}

func printQuestion(out io.Writer, step, total int, q domain.Question, responses map[string]domain.Answer) {
	req := ""
	if !q.Required {
		req = " (optional)"
	}
	fmt.Fprintf(out, "\n[%d/%d] %s%s\n", step+1, total, q.Prompt, req)

	prev, answered := responses[q.ID]
	switch q.Type {
	case domain.QuestionScale:
		if len(q.Labels) > 0 {
			fmt.Fprintf(out, "  1 = %s ... %d = %s\n", q.Labels[0], q.ScaleMax(), q.Labels[len(q.Labels)-1])
		} else {
			fmt.Fprintf(out, "  1 to %d\n", q.ScaleMax())
		}
	case domain.QuestionMultipleChoice, domain.QuestionCheckbox:
		for i, o := range q.Options {
			mark := " "
			if answered && (prev.Choice == o.ID || slices.Contains(prev.Selected, o.ID)) {
				mark = "x"
			}
			fmt.Fprintf(out, "  [%s] %d. %s\n", mark, i+1, o.Label)
		}
		if q.Type == domain.QuestionCheckbox {
			hint := "Toggle options by number, empty line to continue"
			if q.MaxSelect > 0 {
				hint += fmt.Sprintf(" (max %d)", q.MaxSelect)
			}
			fmt.Fprintln(out, "  "+hint)
		}
	case domain.QuestionText:
		if q.Placeholder != "" {
			fmt.Fprintf(out, "  e.g. %s\n", q.Placeholder)
		}
	}
	if answered && q.Type != domain.QuestionCheckbox && q.Type != domain.QuestionMultipleChoice {
		fmt.Fprintf(out, "  current: %s (empty line keeps it)\n", prev)
	}
}

func printAnswers(out io.Writer, m domain.Module, responses map[string]domain.Answer) {
	for i, q := range m.Questions {
		a, ok := responses[q.ID]
		val := "-"
		if ok {
			val = a.String()
		}
		fmt.Fprintf(out, "  %d. %s\n     %s\n", i+1, q.Prompt, val)
	}
}
