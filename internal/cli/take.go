package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"eduquiz-service/internal/app"
	"github.com/spf13/cobra"
)

// NewTakeCmd runs a timed quiz in the terminal.
func NewTakeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "take <quizID>",
		Short: "Take a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStack(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer s.Close()
			current, err := s.auth.Current(cmd.Context())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			session, err := s.quizzes.Open(ctx, current.User, args[0])
			if err != nil {
				return err
			}
			if err := session.Start(ctx); err != nil {
				_ = session.Abandon()
				return err
			}
			return drive(ctx, session, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

const takeHelp = "commands: <option number> answer, n next, p previous, s submit, q quit"

// drive reads commands until the session completes, by submit or by the
// countdown running out.
func drive(ctx context.Context, session *app.Session, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-session.Done():
				return
			}
		}
	}()

	fmt.Fprintln(out, takeHelp)
	printQuestion(out, session.Snapshot())
	for {
		select {
		case <-session.Done():
			return printResult(out, session)
		case line, ok := <-lines:
			if !ok {
				if err := session.Abandon(); err != nil {
					// already finished
					return printResult(out, session)
				}
				fmt.Fprintln(out, "input closed, quiz abandoned")
				return nil
			}
			if err := apply(ctx, session, line); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
			if line == "q" {
				fmt.Fprintln(out, "quiz abandoned")
				return nil
			}
			if session.State() == app.StateInProgress {
				printQuestion(out, session.Snapshot())
			}
		}
	}
}

func apply(ctx context.Context, session *app.Session, line string) error {
	switch line {
	case "":
		return nil
	case "n":
		return session.GoToNext()
	case "p":
		return session.GoToPrevious()
	case "s":
		_, err := session.Submit(ctx)
		return err
	case "q":
		return session.Abandon()
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return fmt.Errorf("unknown command %q", line)
	}
	snap := session.Snapshot()
	if snap.Question == nil {
		return fmt.Errorf("no question to answer")
	}
	return session.SelectAnswer(snap.Question.ID, n-1)
}

func printQuestion(out io.Writer, snap app.SessionSnapshot) {
	if snap.Question == nil {
		return
	}
	fmt.Fprintf(out, "\n[%s left] question %d/%d (%d%%)\n%s\n",
		snap.Remaining, snap.CurrentQuestionIndex+1, snap.TotalQuestions, snap.Progress, snap.Question.Text)
	chosen, answered := snap.Selected[snap.Question.ID]
	for i, opt := range snap.Question.Options {
		mark := " "
		if answered && chosen == i {
			mark = "*"
		}
		fmt.Fprintf(out, " %s %d) %s\n", mark, i+1, opt)
	}
}

func printResult(out io.Writer, session *app.Session) error {
	attempt, ok := session.Result()
	if !ok {
		fmt.Fprintln(out, "quiz ended without a result")
		return nil
	}
	attendance := "not marked"
	if attempt.AttendanceMarked {
		attendance = "marked"
	}
	fmt.Fprintf(out, "\nscore %d%% in %s, attendance %s (attempt %s)\n",
		attempt.Score, app.FormatRemaining(attempt.TimeTaken), attendance, attempt.ID)
	return nil
}
