package panels

import (
	"fmt"

	"mcpx-apu/internal/apu"
	"mcpx-apu/internal/machine"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// topRegisters is the displayed subset of the top region, in layout
// order
var topRegisters = []struct {
	name string
	addr uint32
}{
	{"ISTS", apu.RegISTS},
	{"IEN", apu.RegIEN},
	{"FECTL", apu.RegFECTL},
	{"FECV", apu.RegFECV},
	{"FEAV", apu.RegFEAV},
	{"FEDECMETH", apu.RegFEDECMETH},
	{"FEDECPARAM", apu.RegFEDECPARAM},
	{"FEMEMADDR", apu.RegFEMEMADDR},
	{"FEMEMDATA", apu.RegFEMEMDATA},
	{"FETFORCE0", apu.RegFETFORCE0},
	{"FETFORCE1", apu.RegFETFORCE1},
	{"SECTL", apu.RegSECTL},
	{"XGSCNT", apu.RegXGSCNT},
	{"VPVADDR", apu.RegVPVADDR},
	{"GPSADDR", apu.RegGPSADDR},
	{"GPFADDR", apu.RegGPFADDR},
	{"EPSADDR", apu.RegEPSADDR},
	{"EPFADDR", apu.RegEPFADDR},
	{"GPSMAXSGE", apu.RegGPSMaxSGE},
	{"GPFMAXSGE", apu.RegGPFMaxSGE},
	{"EPSMAXSGE", apu.RegEPSMaxSGE},
	{"EPFMAXSGE", apu.RegEPFMaxSGE},
}

// RegisterViewer creates a panel showing the device registers in
// real-time. Returns the container and an update function to call
// periodically. window is needed for clipboard access.
func RegisterViewer(m *machine.Machine, window fyne.Window) (*fyne.Container, func()) {
	registerText := widget.NewMultiLineEntry()
	registerText.Wrapping = fyne.TextWrapOff
	registerText.Disable() // Disable editing but allow selection/copy
	registerScroll := container.NewScroll(registerText)
	registerScroll.SetMinSize(fyne.NewSize(340, 400))

	formatRegisterState := func() string {
		var text string
		m.WithLock(func() {
			text += "=== APU Registers ===\n\n"
			for _, r := range topRegisters {
				text += fmt.Sprintf("  %-10s [0x%05X] = 0x%08X\n",
					r.name, r.addr, m.APU.Read(r.addr, 4))
			}

			text += "\nVoice lists (top/current/next):\n"
			lists := []struct {
				name          string
				top, cur, nxt uint32
			}{
				{"2D", apu.RegTVL2D, apu.RegCVL2D, apu.RegNVL2D},
				{"3D", apu.RegTVL3D, apu.RegCVL3D, apu.RegNVL3D},
				{"MP", apu.RegTVLMP, apu.RegCVLMP, apu.RegNVLMP},
			}
			for _, l := range lists {
				text += fmt.Sprintf("  %s: 0x%04X / 0x%04X / 0x%04X\n", l.name,
					m.APU.Read(l.top, 4), m.APU.Read(l.cur, 4), m.APU.Read(l.nxt, 4))
			}

			text += "\nProcessors:\n"
			text += fmt.Sprintf("  GP RST = 0x%X, frames %d, cycles %d\n",
				m.APU.ProcReg('G', apu.ProcRegRST),
				m.APU.GP().FrameCount(), m.APU.GP().CyclesRun())
			text += fmt.Sprintf("  EP RST = 0x%X, frames %d\n",
				m.APU.ProcReg('E', apu.ProcRegRST),
				m.APU.EP().FrameCount())
		})

		text += fmt.Sprintf("\nIRQ line: %v\n", m.IRQ.Asserted())
		return text
	}

	updateFunc := func() {
		registerText.SetText(formatRegisterState())
	}

	copyBtn := widget.NewButton("Copy All", func() {
		text := registerText.Text
		if text != "" && window != nil {
			window.Clipboard().SetContent(text)
		}
	})

	updateFunc()

	panel := container.NewVBox(
		widget.NewLabel("APU Registers"),
		container.NewHBox(copyBtn),
		registerScroll,
	)

	return panel, updateFunc
}
