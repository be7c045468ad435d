package main

import (
	"flag"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"

	"mcpx-apu/internal/clock"
	"mcpx-apu/internal/debug"
	"mcpx-apu/internal/machine"
	"mcpx-apu/internal/ui/panels"
)

// apumon runs a machine with the demo bring-up and inspects it live:
// device registers, voice lists and the component log.
func main() {
	beep := flag.Bool("beep", true, "Inject the mixbin debug beep")
	flag.Parse()

	logger := debug.NewLogger(10000)
	logger.EnableAll()
	logger.SetMinLevel(debug.LogLevelDebug)

	cfg := machine.DefaultConfig()
	cfg.APU.MixbinBeep = *beep

	m := machine.New(cfg, clock.NewWall(), logger)
	m.SetupDemo()

	// Drive the machine off the UI thread; StepFrame sleeps until the
	// next timer deadline
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			if !m.StepFrame() {
				return
			}
		}
	}()

	fyneApp := app.NewWithID("com.mcpx-apu.apumon")
	window := fyneApp.NewWindow("MCPX APU Monitor")

	registersPanel, updateRegisters := panels.RegisterViewer(m, window)
	voicesPanel, updateVoices := panels.VoiceListViewer(m)
	logPanel, updateLogs := panels.LogViewer(logger, window)

	tabs := container.NewAppTabs(
		container.NewTabItem("Registers", registersPanel),
		container.NewTabItem("Voices", voicesPanel),
		container.NewTabItem("Log", logPanel),
	)
	window.SetContent(tabs)
	window.Resize(fyne.NewSize(700, 520))

	ticker := time.NewTicker(250 * time.Millisecond)
	go func() {
		for range ticker.C {
			fyne.Do(func() {
				updateRegisters()
				updateVoices()
				updateLogs()
			})
		}
	}()

	window.SetOnClosed(func() {
		ticker.Stop()
		close(stop)
		logger.Shutdown()
	})

	window.ShowAndRun()
}
