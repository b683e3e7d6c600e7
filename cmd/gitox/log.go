package main

import (
	"fmt"

	"github.com/odvcencio/gitox/pkg/repo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"

	// LogTimestampFormat defines the timestamp format in log output
	LogTimestampFormat = "2006-01-02T15:04:05.000Z"
)

// configureLogger sets the format and level on l. An unknown level falls
// back to info; an unknown format is an error.
func configureLogger(l *logrus.Logger, format, level string) error {
	switch format {
	case "json":
		l.Formatter = &logrus.JSONFormatter{TimestampFormat: LogTimestampFormat}
	case "text":
		l.Formatter = &logrus.TextFormatter{TimestampFormat: LogTimestampFormat}
	case "":
		// Just stick with the default
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	logrusLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logrusLevel = logrus.InfoLevel
	}
	l.SetLevel(logrusLevel)
	return nil
}

// newLogger builds the stderr logger for one command run. Flags win over
// the repository's log settings.
func newLogger(cmd *cobra.Command, cfg repo.LogConfig) (*logrus.Logger, error) {
	level, format := cfg.Level, cfg.Format
	flags := cmd.Root().PersistentFlags()
	if v, _ := flags.GetString(flagLogLevel); v != "" {
		level = v
	}
	if v, _ := flags.GetString(flagLogFormat); v != "" {
		format = v
	}

	l := logrus.New()
	l.Out = cmd.ErrOrStderr()
	if err := configureLogger(l, format, level); err != nil {
		return nil, err
	}
	return l, nil
}

// openRepo opens the repository containing the working directory and
// attaches the command's logger to it.
func openRepo(cmd *cobra.Command) (*repo.Repo, error) {
	r, err := repo.Open(".")
	if err != nil {
		return nil, err
	}
	l, err := newLogger(cmd, r.Config.Log)
	if err != nil {
		return nil, err
	}
	r.SetLogger(l.WithField("repo", r.RootDir))
	return r, nil
}
