package system

import (
	"context"
	"fmt"
	"strconv"

	"github.com/doeshing/jarvis-go/internal/domain"
)

func (c *Controller) shutdown(ctx context.Context, p domain.Params) (string, error) {
	delay := p.Int("delay", 0)
	if err := c.power(ctx, "shutdown", delay); err != nil {
		return "", err
	}
	return fmt.Sprintf("System shutdown initiated (delay: %d seconds)", delay), nil
}

func (c *Controller) restart(ctx context.Context, p domain.Params) (string, error) {
	delay := p.Int("delay", 0)
	if err := c.power(ctx, "restart", delay); err != nil {
		return "", err
	}
	return fmt.Sprintf("System restart initiated (delay: %d seconds)", delay), nil
}

func (c *Controller) hibernate(ctx context.Context, _ domain.Params) (string, error) {
	if err := c.power(ctx, "hibernate", 0); err != nil {
		return "", err
	}
	return "System hibernation initiated", nil
}

func (c *Controller) sleep(ctx context.Context, _ domain.Params) (string, error) {
	if err := c.power(ctx, "sleep", 0); err != nil {
		return "", err
	}
	return "System sleep initiated", nil
}

// powerCommand returns the program and arguments for a power operation.
// Unix shutdown only takes minutes, so delays round up.
func powerCommand(goos, op string, delay int) (string, []string, bool) {
	if delay < 0 {
		delay = 0
	}
	minutes := "now"
	if delay > 0 {
		minutes = "+" + strconv.Itoa((delay+59)/60)
	}

	switch goos {
	case "windows":
		switch op {
		case "shutdown":
			return "shutdown", []string{"/s", "/t", strconv.Itoa(delay)}, true
		case "restart":
			return "shutdown", []string{"/r", "/t", strconv.Itoa(delay)}, true
		case "hibernate":
			return "shutdown", []string{"/h"}, true
		case "sleep":
			return "rundll32.exe", []string{"powrprof.dll,SetSuspendState", "0,1,0"}, true
		}
	case "darwin":
		switch op {
		case "shutdown":
			return "shutdown", []string{"-h", minutes}, true
		case "restart":
			return "shutdown", []string{"-r", minutes}, true
		case "hibernate", "sleep":
			return "pmset", []string{"sleepnow"}, true
		}
	case "linux":
		switch op {
		case "shutdown":
			return "shutdown", []string{"-h", minutes}, true
		case "restart":
			return "shutdown", []string{"-r", minutes}, true
		case "hibernate":
			return "systemctl", []string{"hibernate"}, true
		case "sleep":
			return "systemctl", []string{"suspend"}, true
		}
	}
	return "", nil, false
}

func (c *Controller) power(ctx context.Context, op string, delay int) error {
	name, args, ok := powerCommand(c.opts.GOOS, op, delay)
	if !ok {
		return fmt.Errorf("%s is not supported on %s", op, c.opts.GOOS)
	}
	if _, err := c.opts.Runner.Run(ctx, name, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
