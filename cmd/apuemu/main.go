package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"mcpx-apu/internal/apu"
	"mcpx-apu/internal/audio"
	"mcpx-apu/internal/clock"
	"mcpx-apu/internal/debug"
	"mcpx-apu/internal/machine"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (yaml/toml/json)")
	frames := flag.Int("frames", 300, "Number of frames to run (0 = run until interrupted)")
	audioBackend := flag.String("audio", "", "Audio backend: none, sdl, oto (overrides config)")
	beep := flag.Bool("beep", false, "Inject the mixbin debug beep")
	enableLogging := flag.Bool("log", false, "Enable logging for all components")
	savePath := flag.String("save", "", "Write a save state to this path when done")
	flag.Parse()

	// Config file defaults, overridable by flags
	v := viper.New()
	v.SetDefault("ram_size", 16*1024*1024)
	v.SetDefault("gp_cycles_per_frame", 1000)
	v.SetDefault("mixbin_beep", false)
	v.SetDefault("audio", "none")
	v.SetDefault("mixbin", 0)
	if *configPath != "" {
		v.SetConfigFile(*configPath)
		if err := v.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg := machine.Config{
		RAMSize: uint32(v.GetInt64("ram_size")),
		APU: apu.Config{
			PageSize:         4096,
			GPCyclesPerFrame: v.GetInt("gp_cycles_per_frame"),
			MixbinBeep:       v.GetBool("mixbin_beep") || *beep,
		},
	}
	backend := v.GetString("audio")
	if *audioBackend != "" {
		backend = *audioBackend
	}
	mixbin := v.GetInt("mixbin")

	logger := debug.NewLogger(10000)
	defer logger.Shutdown()
	if *enableLogging {
		logger.EnableAll()
		logger.SetMinLevel(debug.LogLevelDebug)
	}

	m := machine.New(cfg, clock.NewWall(), logger)

	out, err := audio.New(backend, audio.SampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating audio backend: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting audio: %v\n", err)
		os.Exit(1)
	}

	m.APU.SetFrameSink(func(mix *[apu.NumMixbins][apu.NumSamplesPerFrame]int32) {
		if err := out.Queue(audio.FramePCM(mix, mixbin)); err != nil {
			logger.Logf(debug.ComponentAudio, debug.LogLevelError, "queue failed: %v", err)
		}
	})

	fmt.Println("MCPX APU emulator")
	ident := machine.Identity()
	fmt.Printf("PCI %04X:%04X rev %d, class 0x%04X, BAR 0x%X\n",
		ident.VendorID, ident.DeviceID, ident.Revision, ident.ClassID, ident.BARSize)
	fmt.Printf("Audio backend: %s, mixbin %d\n", backend, mixbin)

	m.SetupDemo()

	if *frames == 0 {
		fmt.Println("Running until interrupted...")
		for m.StepFrame() {
		}
	} else {
		done := m.RunFrames(*frames)
		fmt.Printf("Ran %d frames, GP frames %d, GP cycles %d, IRQ asserted: %v\n",
			done, m.APU.GP().FrameCount(), m.APU.GP().CyclesRun(), m.IRQ.Asserted())
	}

	if *savePath != "" {
		if err := m.SaveToFile(*savePath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing save state: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Save state written to %s\n", *savePath)
	}
}
