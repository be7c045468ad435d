package panels

import (
	"fmt"
	"os"
	"time"

	"mcpx-apu/internal/debug"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// LogViewer creates a panel showing recent log entries with a level
// filter. Returns the container and an update function to call
// periodically.
func LogViewer(logger *debug.Logger, window fyne.Window) (*fyne.Container, func()) {
	logText := widget.NewMultiLineEntry()
	logText.Wrapping = fyne.TextWrapOff
	logText.Disable()
	logScroll := container.NewScroll(logText)
	logScroll.SetMinSize(fyne.NewSize(600, 400))

	levelSelect := widget.NewSelect([]string{"Error", "Warning", "Info", "Debug", "Trace"}, nil)
	levelSelect.SetSelected("Info")

	levelFromName := map[string]debug.LogLevel{
		"Error":   debug.LogLevelError,
		"Warning": debug.LogLevelWarning,
		"Info":    debug.LogLevelInfo,
		"Debug":   debug.LogLevelDebug,
		"Trace":   debug.LogLevelTrace,
	}

	formatLogs := func() string {
		maxLevel := levelFromName[levelSelect.Selected]
		var text string
		for _, e := range logger.GetRecentEntries(500) {
			if e.Level > maxLevel {
				continue
			}
			text += e.Format() + "\n"
		}
		if text == "" {
			text = "No log entries\n"
		}
		return text
	}

	updateFunc := func() {
		logText.SetText(formatLogs())
	}

	copyBtn := widget.NewButton("Copy All", func() {
		text := logText.Text
		if text != "" && window != nil {
			window.Clipboard().SetContent(text)
		}
	})

	saveBtn := widget.NewButton("Save Logs", func() {
		timestamp := time.Now().Format("20060102_150405")
		filename := fmt.Sprintf("apu_logs_%s.txt", timestamp)

		content := fmt.Sprintf("MCPX APU Logs\nGenerated: %s\n\n%s",
			time.Now().Format("2006-01-02 15:04:05"), logText.Text)

		if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
			fmt.Printf("Error saving logs: %v\n", err)
		} else {
			fmt.Printf("Logs saved to: %s\n", filename)
		}
	})

	clearBtn := widget.NewButton("Clear", func() {
		logger.Clear()
		logText.SetText("")
	})

	updateFunc()

	panel := container.NewVBox(
		widget.NewLabel("Device Log"),
		container.NewHBox(levelSelect, copyBtn, saveBtn, clearBtn),
		logScroll,
	)

	return panel, updateFunc
}
