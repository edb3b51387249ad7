package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/trevorjharder/Coastal-Waves/internal/serial"
)

type serialCmd struct {
	env     *env
	out     io.Writer
	stretch bool
	framing bool
}

func (*serialCmd) Name() string     { return "serial" }
func (*serialCmd) Synopsis() string { return "encode, decode and allocate serial numbers" }
func (*serialCmd) Usage() string {
	return `coastalwaves serial encode <painting> <variant> <location> <sequence>
coastalwaves serial decode <serial>...
coastalwaves serial next <painting> <variant> <location>
coastalwaves serial variant [-stretch] [-framing] <category> <size>

  next reads the database and prints the first unused sequence for the
  triple. It does not reserve it.
`
}

func (c *serialCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.stretch, "stretch", false, "Variant is stretched (variant action only).")
	f.BoolVar(&c.framing, "framing", false, "Variant is framed (variant action only).")
}

func (c *serialCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	action, args := f.Arg(0), f.Args()[1:]

	var err error
	switch {
	case action == "encode" && len(args) == 4:
		err = c.encode(args)
	case action == "decode" && len(args) > 0:
		err = c.decode(args)
	case action == "next" && len(args) == 3:
		err = c.next(ctx, args)
	case action == "variant" && len(args) == 2:
		_, err = fmt.Fprintln(c.out, serial.VariantCode(args[0], args[1], c.stretch, c.framing))
	default:
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *serialCmd) encode(args []string) error {
	seq, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("invalid sequence %q", args[3])
	}
	s, err := serial.Encode(strings.ToUpper(args[0]), strings.ToUpper(args[1]), strings.ToUpper(args[2]), seq)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, s)
	return err
}

// decode prints every serial it can decode and reports the first failure
// after trying them all.
func (c *serialCmd) decode(args []string) error {
	var firstErr error
	for _, a := range args {
		comp, err := serial.Decode(a)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Fprintf(c.out, "%s\tpainting=%s variant=%s location=%s sequence=%d\n",
			comp.String(), comp.Painting, comp.Variant, comp.Location, comp.Sequence)
	}
	return firstErr
}

func (c *serialCmd) next(ctx context.Context, args []string) error {
	svc, closeDB, err := c.env.openService()
	if err != nil {
		return err
	}
	defer closeDB()

	s, err := svc.NextSerial(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, s)
	return err
}
