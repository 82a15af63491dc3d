package queue

import (
	"fmt"
	"log/slog"
)

// slogAdapter lets asynq write through the application logger.
type slogAdapter struct {
	log *slog.Logger
}

func (l slogAdapter) Debug(args ...any) { l.log.Debug(fmt.Sprint(args...)) }
func (l slogAdapter) Info(args ...any)  { l.log.Info(fmt.Sprint(args...)) }
func (l slogAdapter) Warn(args ...any)  { l.log.Warn(fmt.Sprint(args...)) }
func (l slogAdapter) Error(args ...any) { l.log.Error(fmt.Sprint(args...)) }
func (l slogAdapter) Fatal(args ...any) { l.log.Error(fmt.Sprint(args...), slog.Bool("fatal", true)) }
