package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
)

// ErrNoInput is returned when stdin ends before a required answer.
var ErrNoInput = errors.New("no input")

// Terminal access, swapped in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// readLine returns one trimmed line. A final line without a newline counts;
// an empty stream is ErrNoInput.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// askLine prints "label: " and reads a non-empty answer.
func askLine(reader *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s: ", label)
	answer, err := readLine(reader)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", fmt.Errorf("%w: %s is required", common.ErrInvalidArgument, strings.ToLower(label))
	}
	return answer, nil
}

// askSecret reads a password. On a terminal the input is not echoed; when
// stdin is piped the next line of reader is used, so scripts can pass it in.
// The caller wipes the result.
func askSecret(reader *bufio.Reader, in io.Reader, w io.Writer, label string) ([]byte, error) {
	fmt.Fprintf(w, "%s: ", label)
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		if len(pw) == 0 {
			return nil, fmt.Errorf("%w: password is required", common.ErrInvalidArgument)
		}
		return pw, nil
	}

	line, err := readLine(reader)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	if line == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrInvalidArgument)
	}
	return []byte(line), nil
}

// askText reads lines until an empty one and joins them. Used for note bodies
// and rewrite instructions.
func askText(reader *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s (finish with an empty line):\n", label)

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			lines = append(lines, line)
		}
		if line == "" || err != nil {
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// confirm asks a yes/no question; only y or yes agree.
func confirm(reader *bufio.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [y/N] ", question)
	answer, _ := readLine(reader)
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}
