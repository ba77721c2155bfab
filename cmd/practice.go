package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyaudit/internal/ingest"
	"github.com/abhisek/studyaudit/internal/quiz"
	"github.com/abhisek/studyaudit/internal/screens/review"
	"github.com/abhisek/studyaudit/internal/session"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run one practice session on the terminal, without the full-screen UI",
	Long: `Run a practice session line by line: the source is given with flags, questions
are answered on stdin and the audit is printed and stored in history.

Useful in scripts and for evaluating question quality.`,
	RunE: runPractice,
}

func init() {
	practiceCmd.Flags().String("file", "", "Document to study")
	practiceCmd.Flags().String("topic", "", "Topic to study; with --text, the topic of the text")
	practiceCmd.Flags().String("text", "", "File holding study text for --topic")
	practiceCmd.Flags().String("focus", quiz.WholeContent, "Detected topic to practice")
	practiceCmd.Flags().String("format", string(quiz.FormatObjective), "objective or open-ended")
	practiceCmd.Flags().Int("count", 5, "Number of questions (5, 10 or 15)")
	practiceCmd.Flags().String("difficulty", string(quiz.DifficultyStandard), "standard, advanced or expert")
}

// practiceOptions are the flag values of a practice run.
type practiceOptions struct {
	File   string
	Topic  string
	Text   string
	Config quiz.SessionConfig
}

func runPractice(cmd *cobra.Command, args []string) error {
	var opts practiceOptions
	opts.File, _ = cmd.Flags().GetString("file")
	opts.Topic, _ = cmd.Flags().GetString("topic")
	opts.Text, _ = cmd.Flags().GetString("text")
	format, _ := cmd.Flags().GetString("format")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	opts.Config.Count, _ = cmd.Flags().GetInt("count")
	opts.Config.Topic, _ = cmd.Flags().GetString("focus")
	opts.Config.Format = quiz.Format(format)
	opts.Config.Difficulty = quiz.Difficulty(difficulty)

	if opts.File == "" && opts.Topic == "" {
		return errors.New("one of --file or --topic is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return err
	}

	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctrl, err := rt.controller(cmd.Context())
	if err != nil {
		return err
	}
	return practice(cmd.Context(), ctrl, opts, os.Stdin, os.Stdout)
}

// practice drives ctrl through one whole session. Questions are read
// from in, everything else is written to out.
func practice(ctx context.Context, ctrl *session.Controller, opts practiceOptions, in io.Reader, out io.Writer) error {
	fail := func(err error) error {
		if notice := ctrl.State().Notice; notice != "" {
			fmt.Fprintln(out, notice)
		}
		return err
	}

	if err := submit(ctx, ctrl, opts); err != nil {
		return fail(err)
	}

	st := ctrl.State()
	fmt.Fprintf(out, "Source: %s\n", st.Source.Title())
	fmt.Fprintf(out, "Topics: %s\n\n", strings.Join(st.Topics, ", "))

	if err := ctrl.Configure(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Generating %d %s questions (%s)...\n\n", opts.Config.Count, opts.Config.Format, opts.Config.Difficulty)
	if err := ctrl.StartPractice(ctx, opts.Config); err != nil {
		return fail(err)
	}

	scanner := bufio.NewScanner(in)
	q := ctrl.State().Quiz
	for i, item := range q.Questions {
		fmt.Fprintf(out, "── Question %d/%d ──\n%s\n", i+1, len(q.Questions), item.Prompt)
		for _, c := range item.Choices {
			fmt.Fprintf(out, "  %s) %s\n", c.Label, c.Text)
		}

		fmt.Fprint(out, "\nYour answer: ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\n(input closed)")
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			fmt.Fprintln(out, "(skipped)")
		} else if err := ctrl.RecordAnswer(item.ID, answer); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	if err := grade(ctx, ctrl, scanner, out, fail); err != nil {
		return err
	}

	st = ctrl.State()
	fmt.Fprintln(out)
	fmt.Fprintln(out, review.Report(st.Quiz, st.Evaluation, 100))
	if st.Notice != "" {
		fmt.Fprintln(out, st.Notice)
	}
	return nil
}

func submit(ctx context.Context, ctrl *session.Controller, opts practiceOptions) error {
	switch {
	case opts.File != "":
		src, err := ingest.ReadDocument(opts.File)
		if err != nil {
			return err
		}
		return ctrl.SubmitSource(ctx, src)
	case opts.Text != "":
		body, err := os.ReadFile(opts.Text)
		if err != nil {
			return fmt.Errorf("read study text: %w", err)
		}
		return ctrl.SubmitText(ctx, opts.Topic, string(body))
	default:
		return ctrl.SubmitTopic(ctx, opts.Topic)
	}
}

// grade ends the session. A failed grading keeps the answers, so the user
// is offered another attempt until it succeeds or they decline.
func grade(ctx context.Context, ctrl *session.Controller, scanner *bufio.Scanner, out io.Writer, fail func(error) error) error {
	for {
		fmt.Fprintln(out, "Grading...")
		err := ctrl.EndSession(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, session.ErrNoAnswers) || ctrl.State().Step != session.StepAttempting {
			return fail(err)
		}
		fail(err)

		fmt.Fprintf(out, "Your %d answers are kept. Retry grading? [Y/n] ", len(ctrl.State().Answers))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return err
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "", "y", "yes":
			continue
		}
		return err
	}
}
