package config

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	for i := range cfg.Devices {
		d := &cfg.Devices[i]
		if d.Type != TypeServo {
			continue
		}
		// limits outside the theoretical range are clamped by the
		// firmware; keep the host view identical
		d.Limits[0] = clamp(d.Limits[0], d.Range[0], d.Range[1])
		d.Limits[1] = clamp(d.Limits[1], d.Range[0], d.Range[1])
		d.Default = clamp(d.Default, d.Limits[0], d.Limits[1])
	}

	if p := cfg.MQTT.Prefix; p != "" && p[len(p)-1] != '/' {
		cfg.MQTT.Prefix = p + "/"
	}
}

func clamp(v, lo, hi uint16) uint16 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
