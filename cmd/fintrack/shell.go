package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type shellCmd struct {
	in io.Reader
}

func (*shellCmd) Name() string     { return "shell" }
func (*shellCmd) Synopsis() string { return "run commands against one live set of stores" }
func (*shellCmd) Usage() string {
	return `shell

  Reads one command per line until EOF or "exit". The stores, the filter
  and the session are shared by every line, so effects accumulate.
`
}

func (*shellCmd) SetFlags(*flag.FlagSet) {}

func (c *shellCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	in := c.in
	if in == nil {
		in = os.Stdin
	}
	scanner := bufio.NewScanner(in)

	prompt := func() { fmt.Fprint(stdout, "fintrack> ") }
	prompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case "exit", "quit":
			return subcommands.ExitSuccess
		default:
			executeLine(ctx, line, app)
		}
		prompt()
	}
	fmt.Fprintln(stdout)
	if err := scanner.Err(); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// executeLine runs one shell line through a fresh commander, since a
// commander parses its top-level flags only once.
func executeLine(ctx context.Context, line string, args ...interface{}) subcommands.ExitStatus {
	fs := flag.NewFlagSet("fintrack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	commander := subcommands.NewCommander(fs, "fintrack")
	commander.Output = stdout
	commander.Error = stderr
	register(commander, false)

	fields, err := splitLine(line)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := fs.Parse(fields); err != nil {
		return subcommands.ExitUsageError
	}
	return commander.Execute(ctx, args...)
}

// splitLine splits on spaces, keeping double-quoted runs together.
func splitLine(line string) ([]string, error) {
	var (
		fields  []string
		cur     strings.Builder
		quoted  bool
		pending bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case r == ' ' && !quoted:
			if pending {
				fields = append(fields, cur.String())
				cur.Reset()
				pending = false
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote in %q", line)
	}
	if pending {
		fields = append(fields, cur.String())
	}
	return fields, nil
}
