// Package main watches a GPIO pin for edge transitions and logs every
// trigger until interrupted.
package main

import (
	"context"
	"sync/atomic"

	"github.com/edaniels/golog"
	goutils "go.viam.com/utils"

	"github.com/McCoy1701/JakesteringPi/gpio"
)

var logger = golog.NewDevelopmentLogger("edgetrigger")

func main() {
	goutils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	Pin int `flag:"pin,default=25,usage=BCM pin to watch"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := goutils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	// The event request itself configures the line as an input; claiming it
	// separately first would make the kernel report it busy.
	manager := gpio.NewManager(logger)
	defer goutils.UncheckedErrorFunc(manager.Close)

	var count int64
	if err := manager.RegisterInterrupt(argsParsed.Pin, gpio.EdgeBoth, func() {
		logger.Infow("edge trigger", "pin", argsParsed.Pin, "count", atomic.AddInt64(&count, 1))
	}); err != nil {
		return err
	}
	logger.Infof("watching pin %d for both edges", argsParsed.Pin)

	<-ctx.Done()
	return nil
}
