package utils

import (
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	charm "github.com/charmbracelet/log"
)

// Log 全局 logger。main 里调一次 Init，之后各包直接用
var Log = charm.NewWithOptions(os.Stderr, charm.Options{
	ReportTimestamp: true,
	TimeFormat:      time.DateTime,
	Prefix:          "holdem",
})

func Init(debug bool) {
	if debug {
		Log.SetLevel(charm.DebugLevel)
	}

	styles := charm.DefaultStyles()
	styles.Levels[charm.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("#1E3A2F")).
		Foreground(lipgloss.Color("#7CFC00")).Bold(true)

	styles.Levels[charm.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("#3A2E1E")).
		Foreground(lipgloss.Color("#FFD700")).Bold(true)

	styles.Levels[charm.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("#3A1E1E")).
		Foreground(lipgloss.Color("#FF6347")).Bold(true)

	styles.Levels[charm.FatalLevel] = lipgloss.NewStyle().
		SetString("FATAL").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("#000000")).
		Foreground(lipgloss.Color("#FF0000")).Bold(true)

	Log.SetStyles(styles)
}
