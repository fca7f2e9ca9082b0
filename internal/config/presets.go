package config

import "sort"

var Presets = map[string]*Config{
	"smoke": {
		Name: "smoke", Resolution: 32, Batch: 2, Samples: 2,
		Viscosity: 1e-2, Duration: 1.0, Dt: 1e-3, RecordSteps: 10, ValidateState: true,
		Initial: InitialConfig{Kind: "grf", Alpha: DefaultGRFAlpha, Tau: DefaultGRFTau, Amp: 1},
		Forcing: ForcingConfig{Kind: "none"},
		Noise:   NoiseConfig{Kind: "none"},
	},
	"fno": {
		Name: "fno", Resolution: 64, Batch: 20, Samples: 20,
		Viscosity: 1e-3, Duration: 50.0, Dt: 1e-4, RecordSteps: 50, ValidateState: true,
		Initial: InitialConfig{Kind: "grf", Alpha: DefaultGRFAlpha, Tau: DefaultGRFTau, Amp: 1},
		Forcing: ForcingConfig{Kind: "periodic", Amplitude: 0.1},
		Noise:   NoiseConfig{Kind: "none"},
	},
	"spde": {
		Name: "spde", Resolution: 64, Batch: 20, Samples: 20,
		Viscosity: 1e-4, Duration: 50.0, Dt: 1e-4, RecordSteps: 200, ValidateState: true,
		Initial: InitialConfig{Kind: "grf", Alpha: DefaultGRFAlpha, Tau: DefaultGRFTau, Amp: 1},
		Forcing: ForcingConfig{Kind: "none"},
		Noise:   NoiseConfig{Kind: "wiener", Alpha: DefaultNoiseAlpha},
	},
	"kolmogorov": {
		Name: "kolmogorov", Resolution: 64, Batch: 4, Samples: 4,
		Viscosity: 1e-3, Duration: 10.0, Dt: 1e-3, RecordSteps: 100, ValidateState: true,
		Initial: InitialConfig{Kind: "grf", Alpha: DefaultGRFAlpha, Tau: DefaultGRFTau, Amp: 1},
		Forcing: ForcingConfig{Kind: "kolmogorov", Amplitude: 1.0, Wavenumber: 4},
		Noise:   NoiseConfig{Kind: "none"},
	},
	"taylor_green": {
		Name: "taylor_green", Resolution: 32, Batch: 1, Samples: 1,
		Viscosity: 1e-2, Duration: 2.0, Dt: 1e-3, RecordSteps: 20, ValidateState: true,
		Initial: InitialConfig{Kind: "taylor_green", Amp: 1},
		Forcing: ForcingConfig{Kind: "none"},
		Noise:   NoiseConfig{Kind: "none"},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
