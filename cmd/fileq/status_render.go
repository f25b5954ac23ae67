package main

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusIndent = "  "

type statusLine struct {
	label   string
	kind    statusKind
	message string
}

// statusBlock collects labelled lines and prints them with every label padded
// to the widest one. A line without a label prints as a blank separator.
type statusBlock struct {
	lines []statusLine
}

func (b *statusBlock) add(label string, kind statusKind, message string) {
	b.lines = append(b.lines, statusLine{label: label, kind: kind, message: message})
}

func (b *statusBlock) addError(label string, err error) {
	b.add(label, statusError, err.Error())
}

func (b *statusBlock) separator() {
	b.lines = append(b.lines, statusLine{})
}

func (b *statusBlock) write(out io.Writer, colorize bool) {
	width := 0
	for _, line := range b.lines {
		if n := utf8.RuneCountInString(line.label) + 1; n > width {
			width = n
		}
	}
	for _, line := range b.lines {
		if line.label == "" {
			fmt.Fprintln(out)
			continue
		}
		fmt.Fprintln(out, renderStatusLine(line.label, width, line.kind, line.message, colorize))
	}
}

func renderStatusLine(label string, width int, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, width, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
