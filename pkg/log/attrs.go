package log

import "log/slog"

func RunID[T ~string](id T) slog.Attr {
	return slog.String("run_id", string(id))
}

func StepID[T ~string](id T) slog.Attr {
	return slog.String("step_id", string(id))
}

func Capability[T ~string](name T) slog.Attr {
	return slog.String("capability", string(name))
}

func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

func EventType[T ~string](t T) slog.Attr {
	return slog.String("event_type", string(t))
}

func Branch(branch int) slog.Attr {
	return slog.Int("branch", branch)
}

func Attempt(attempt int) slog.Attr {
	return slog.Int("attempt", attempt)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
