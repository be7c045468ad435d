package panels

import (
	"fmt"

	"mcpx-apu/internal/apu"
	"mcpx-apu/internal/machine"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// VoiceListViewer creates a panel that walks the three voice lists
// through guest memory and shows each voice's link and state bits.
// Traversal is bounded by the voice count so a guest-corrupted cycle
// cannot hang the UI.
func VoiceListViewer(m *machine.Machine) (*fyne.Container, func()) {
	voiceText := widget.NewMultiLineEntry()
	voiceText.Wrapping = fyne.TextWrapOff
	voiceText.Disable()
	voiceScroll := container.NewScroll(voiceText)
	voiceScroll.SetMinSize(fyne.NewSize(340, 300))

	formatVoiceLists := func() string {
		var text string
		m.WithLock(func() {
			vpvaddr := m.APU.Read(apu.RegVPVADDR, 4)
			text += fmt.Sprintf("Voice table at 0x%08X\n", vpvaddr)

			lists := []struct {
				name string
				top  uint32
			}{
				{"2D", apu.RegTVL2D},
				{"3D", apu.RegTVL3D},
				{"MP", apu.RegTVLMP},
			}
			for _, l := range lists {
				text += fmt.Sprintf("\n%s list:\n", l.name)
				handle := m.APU.Read(l.top, 4) & apu.VoiceHandleMask
				if handle == apu.NullHandle {
					text += "  (empty)\n"
					continue
				}
				for steps := 0; handle != apu.NullHandle && steps < apu.MaxVoices; steps++ {
					rec := vpvaddr + handle*apu.VoiceSize
					state := m.RAM.Ldl(rec + apu.VoiceParState)
					link := m.RAM.Ldl(rec+apu.VoiceTarPitchLink) & apu.VoiceNextHandleMask
					active := state&apu.VoiceStateActive != 0
					paused := state&apu.VoiceStatePaused != 0
					text += fmt.Sprintf("  0x%04X  active=%-5v paused=%-5v next=0x%04X\n",
						handle, active, paused, link)
					handle = link
				}
			}
		})
		return text
	}

	updateFunc := func() {
		voiceText.SetText(formatVoiceLists())
	}

	updateFunc()

	panel := container.NewVBox(
		widget.NewLabel("Voice Lists"),
		voiceScroll,
	)

	return panel, updateFunc
}
