package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/aryanA101a/lulu/vm"
)

var cli struct {
	FilePath string `short:"f" required:"" type:"existingfile" help:"Program image to run."`
	Trace    bool   `help:"Log every decoded instruction."`
	NoRaw    bool   `help:"Leave the terminal in canonical mode."`
	LogLevel string `default:"info" enum:"trace,debug,info,warn,error" help:"Diagnostic log level (${enum})."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("lulu"),
		kong.Description("Runs an LC-3 program image."),
	)

	log, err := newLogger(cli.LogLevel, cli.Trace)
	ctx.FatalIfErrorf(err)

	os.Exit(run(log))
}

// newLogger builds the diagnostics logger. trace raises the level to
// debug so every decoded instruction is logged.
func newLogger(levelName string, trace bool) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(level)
	if trace && !log.IsLevelEnabled(logrus.DebugLevel) {
		log.SetLevel(logrus.DebugLevel)
	}
	return log, nil
}

func run(log *logrus.Logger) int {
	machine, err := vm.New(
		vm.Input(vm.NewKeyQueue(os.Stdin)),
		vm.Output(os.Stdout),
		vm.Logger(log),
	)
	if err != nil {
		log.WithError(err).Error("failed to create machine")
		return 1
	}

	if err := machine.LoadFile(cli.FilePath); err != nil {
		log.WithError(err).Error("failed to load image")
		return 1
	}

	if !cli.NoRaw {
		restore, err := vm.EnableRawMode(os.Stdin)
		if err != nil {
			log.WithError(err).Warn("could not enable raw mode")
		} else {
			defer func() {
				if err := restore(); err != nil {
					log.WithError(err).Warn("could not restore terminal")
				}
			}()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = machine.Run(ctx)
	fields := logrus.Fields{
		"state":  machine.State(),
		"cycles": machine.Cycles(),
	}
	if err != nil {
		log.WithFields(fields).WithError(err).Error("machine stopped")
		return 1
	}
	log.WithFields(fields).Info("HALT")
	return 0
}
