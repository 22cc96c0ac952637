package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mangasplit/internal/config"
	"mangasplit/internal/logger"
)

// env holds the defaults every flag starts from.
var env = config.FromEnv()

var (
	splitModeFlag string
	directionFlag string
	skipStart     int
	skipEnd       int
	honorEXIF     bool
	logLevel      string
	logFile       string
)

var rootCmd = &cobra.Command{
	Use:   "mangasplit",
	Short: "mangasplit - split manga double-page spreads and repackage comics",
	Long: "mangasplit extracts comic archives, splits wide double-page spreads into single pages " +
		"in reading order, optionally rotates wide pages, and packages every folder as CBZ, CBR, ZIP, RAR, PDF or a plain folder.",
	SilenceUsage: true,
}

func Execute() {
	defer logger.Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&splitModeFlag, "split-mode", "m", env.SplitMode, "auto, keep or split-all")
	flags.StringVarP(&directionFlag, "direction", "d", env.Direction, "reading direction: rtl (manga) or ltr (western)")
	flags.IntVar(&skipStart, "skip-start", 0, "never split this many pages at the start of each folder")
	flags.IntVar(&skipEnd, "skip-end", 0, "never split this many pages at the end of each folder")
	flags.BoolVar(&honorEXIF, "honor-exif", false, "use JPEG EXIF orientation when deciding whether a page is wide")
	flags.StringVar(&logLevel, "log-level", env.Logging.Level, "log level (debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", env.Logging.File, "write logs to this file (rotated)")
}

// processingConfig builds the run configuration from the shared flags.
func processingConfig(format string, rotate, deleteOriginals bool) (config.Processing, error) {
	cfg := config.Default()
	var err error
	if cfg.SplitMode, err = config.ParseSplitMode(splitModeFlag); err != nil {
		return cfg, err
	}
	if cfg.Direction, err = config.ParseDirection(directionFlag); err != nil {
		return cfg, err
	}
	if cfg.Format, err = config.ParseFormat(format); err != nil {
		return cfg, err
	}
	cfg.SkipStart = skipStart
	cfg.SkipEnd = skipEnd
	cfg.RotateWide = rotate
	cfg.DeleteOriginals = deleteOriginals
	return cfg, cfg.Validate()
}

// initLogging writes to the log file when one is set, and to stderr only when
// nothing else owns the terminal.
func initLogging(console bool) error {
	return logger.Init(logger.Options{
		Level:      logLevel,
		Pretty:     env.Logging.Pretty,
		Console:    console,
		File:       logFile,
		MaxSizeMB:  env.Logging.MaxSizeMB,
		MaxBackups: env.Logging.MaxBackups,
		MaxAgeDays: env.Logging.MaxAgeDays,
		Compress:   env.Logging.Compress,
	})
}
